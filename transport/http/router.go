package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/siggy-land/siggy/service"
)

// RouterConfig carries everything SetupRouter wires together
type RouterConfig struct {
	AuthService    *service.AuthService
	ProfileService *service.ProfileService
	Cookies        *CookieCodec

	// InsecureSecret is reported on /health when the signing secret was not set explicitly
	InsecureSecret bool

	// Registry receives the auth metrics. When nil each router gets a private
	// registry, which /metrics serves.
	Registry prometheus.Registerer
	// Gatherer backs /metrics; defaults to Registry when it can gather
	Gatherer prometheus.Gatherer
}

// SetupRouter sets up the Gin router
func SetupRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	registry, gatherer := cfg.Registry, cfg.Gatherer
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if gatherer == nil {
		if g, ok := registry.(prometheus.Gatherer); ok {
			gatherer = g
		} else {
			gatherer = prometheus.DefaultGatherer
		}
	}
	metrics := NewMetrics(registry)

	handlers := NewAuthHandlers(cfg.AuthService, cfg.Cookies, metrics)
	profile := NewProfileHandlers(cfg.ProfileService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":             true,
			"insecure":       cfg.InsecureSecret,
			"singleUseNonce": cfg.AuthService.SingleUseNonces(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.Use(SessionMiddleware(cfg.Cookies, cfg.AuthService, metrics))

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/wallet/challenge", handlers.Challenge)
		auth.POST("/wallet/verify", handlers.Verify)
		auth.GET("/session", handlers.Session)
		auth.POST("/logout", handlers.Logout)
	}

	// Protected profile routes
	me := api.Group("/profile")
	me.Use(RequireAuth())
	{
		me.GET("/me", profile.Me)
		me.PATCH("/me", profile.Update)
		me.POST("/interactions", profile.TrackInteraction)
	}

	return router
}
