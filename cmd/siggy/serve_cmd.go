package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/siggy-land/siggy/adapters/events"
	"github.com/siggy-land/siggy/adapters/store"
	"github.com/siggy-land/siggy/adapters/tokenizer"
	"github.com/siggy-land/siggy/adapters/users"
	"github.com/siggy-land/siggy/conf"
	"github.com/siggy-land/siggy/internal/secret"
	"github.com/siggy-land/siggy/ports"
	"github.com/siggy-land/siggy/service"
	transport "github.com/siggy-land/siggy/transport/http"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = cobra.Command{
	Use:  "serve",
	Long: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		execWithConfig(cmd, serve)
	},
}

func serve(cmd *cobra.Command, config *conf.GlobalConfiguration) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	key := resolveSecret(config)
	logSecret(key)

	var redisClient *redis.Client
	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			logrus.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	userStore, closeStore := openUserStore(ctx, config)
	defer closeStore()

	var eventPub ports.EventPublisher = events.NopPublisher{}
	if config.EventsDriver != conf.EventsNone {
		publisher := openPublisher(config, redisClient)
		defer publisher.Close()
		eventPub = events.NewWatermillPublisher(publisher)
	}

	var opts []service.Option
	if config.SingleUseNonce {
		opts = append(opts, service.WithNonceStore(openNonceStore(redisClient)))
	}

	authService := service.NewAuthService(userStore, eventPub, opts...)

	if config.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := newRegistry()
	router := transport.SetupRouter(transport.RouterConfig{
		AuthService:    authService,
		ProfileService: service.NewProfileService(userStore),
		Cookies:        cookieCodec(config, key),
		InsecureSecret: key.Insecure(),
		Registry:       registry,
		Gatherer:       registry,
	})

	var handler http.Handler = router
	if len(config.CORS.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   config.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler(router)
	}

	server := &http.Server{
		Addr:              config.API.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("graceful shutdown failed")
		}
	}()

	logrus.Infof("Siggy API started on: %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

func resolveSecret(config *conf.GlobalConfiguration) secret.Secret {
	return secret.Resolve(config.AuthSecret(), config.Hints())
}

// newRegistry holds the runtime collectors next to the auth metrics
func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// cookieCodec marks cookies Secure only in production
func cookieCodec(config *conf.GlobalConfiguration, key secret.Secret) *transport.CookieCodec {
	return transport.NewCookieCodec(tokenizer.NewHMACTokenizer(key.Bytes()), config.Production())
}

func logSecret(key secret.Secret) {
	entry := logrus.WithFields(logrus.Fields{
		"source":      key.Source(),
		"fingerprint": key.Fingerprint(),
	})
	switch key.Source() {
	case secret.SourceExplicit:
		entry.Info("using configured auth secret")
	case secret.SourceDerived:
		entry.Warn("AUTH_SECRET is not set; using a secret derived from deployment environment")
	default:
		entry.Warn("AUTH_SECRET is not set; using the public development secret")
	}
}

func openUserStore(ctx context.Context, config *conf.GlobalConfiguration) (ports.UserStore, func()) {
	if config.StoreDriver != conf.StorePostgres {
		return users.NewMemoryStore(), func() {}
	}

	db, err := users.OpenPostgres(ctx, config.DatabaseURL)
	if err != nil {
		logrus.Fatalf("error opening database: %+v", err)
	}

	pg := users.NewPostgresStore(db)
	if err := pg.RunMigrations(ctx); err != nil {
		db.Close()
		logrus.Fatalf("error running migrations: %+v", err)
	}

	return pg, func() { closeDB(db) }
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close database")
	}
}

func openNonceStore(client *redis.Client) ports.NonceStore {
	if client == nil {
		logrus.Warn("single-use nonces are kept in memory; they are not shared between instances")
		return store.NewMemoryStore()
	}
	return store.NewRedisStore(client)
}

func openPublisher(config *conf.GlobalConfiguration, client *redis.Client) message.Publisher {
	logger := watermill.NewStdLogger(false, false)

	switch config.EventsDriver {
	case conf.EventsRedis:
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: client,
			},
			logger,
		)
		if err != nil {
			logrus.Fatalf("Failed to create Redis publisher: %v", err)
		}
		return publisher
	default:
		return gochannel.NewGoChannel(gochannel.Config{}, logger)
	}
}
