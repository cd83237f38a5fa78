package conf

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvProduction = "production"

	StoreMemory   = "memory"
	StorePostgres = "postgres"

	EventsNone   = "none"
	EventsMemory = "memory"
	EventsRedis  = "redis"
)

// APIConfiguration holds the listener settings
type APIConfiguration struct {
	Host string `json:"host"`
	Port int    `json:"port" envconfig:"PORT" default:"8080"`
}

// Addr is the host:port the server listens on
func (a APIConfiguration) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// CORSConfiguration holds the cross-origin settings. CORS is off when no origins are set.
type CORSConfiguration struct {
	AllowedOrigins []string `json:"allowed_origins" split_words:"true"`
}

// ExplicitSecret is the operator-set signing secret. It is read without the
// service prefix so AUTH_SECRET takes precedence over SIGGY_AUTH_SECRET.
type ExplicitSecret struct {
	AuthSecret      string `envconfig:"AUTH_SECRET"`
	SiggyAuthSecret string `envconfig:"SIGGY_AUTH_SECRET"`
}

// Value returns the first non-empty secret
func (e ExplicitSecret) Value() string {
	for _, v := range []string{e.AuthSecret, e.SiggyAuthSecret} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// SecretConfiguration holds the derivation hints of the signing secret resolver.
// Every field also reads its unprefixed variable, e.g. RAILWAY_PROJECT_ID.
type SecretConfiguration struct {
	FallbackSecret               string `json:"-" envconfig:"FALLBACK_SECRET"`
	OpenAIAPIKey                 string `json:"-" envconfig:"OPENAI_API_KEY"`
	VercelDeploymentID           string `json:"-" envconfig:"VERCEL_DEPLOYMENT_ID"`
	VercelAutomationBypassSecret string `json:"-" envconfig:"VERCEL_AUTOMATION_BYPASS_SECRET"`
	VercelURL                    string `json:"-" envconfig:"VERCEL_URL"`
	VercelProjectProductionURL   string `json:"-" envconfig:"VERCEL_PROJECT_PRODUCTION_URL"`
	RailwayProjectID             string `json:"-" envconfig:"RAILWAY_PROJECT_ID"`
	RenderServiceID              string `json:"-" envconfig:"RENDER_SERVICE_ID"`
}

// Hints returns the derivation seeds in priority order
func (s SecretConfiguration) Hints() []string {
	return []string{
		s.FallbackSecret,
		s.OpenAIAPIKey,
		s.VercelDeploymentID,
		s.VercelAutomationBypassSecret,
		s.VercelURL,
		s.VercelProjectProductionURL,
		s.RailwayProjectID,
		s.RenderServiceID,
	}
}

// GlobalConfiguration holds all the configuration for the service
type GlobalConfiguration struct {
	SecretConfiguration
	Explicit ExplicitSecret `json:"-" ignored:"true"`

	Env     string            `json:"env" default:"development"`
	API     APIConfiguration  `json:"api"`
	CORS    CORSConfiguration `json:"cors"`
	Logging LoggingConfig     `json:"log" envconfig:"LOG"`

	StoreDriver    string `json:"store_driver" envconfig:"STORE_DRIVER" default:"memory"`
	DatabaseURL    string `json:"-" envconfig:"DATABASE_URL"`
	RedisURL       string `json:"-" envconfig:"REDIS_URL"`
	SingleUseNonce bool   `json:"single_use_nonce" envconfig:"SINGLE_USE_NONCE"`
	EventsDriver   string `json:"events_driver" envconfig:"EVENTS_DRIVER" default:"none"`
}

// AuthSecret is the explicit signing secret, empty when none is configured
func (c *GlobalConfiguration) AuthSecret() string {
	return c.Explicit.Value()
}

// Production reports whether cookies must be marked Secure
func (c *GlobalConfiguration) Production() bool {
	return c.Env == EnvProduction
}

// Validate checks driver selections and their required connection strings
func (c *GlobalConfiguration) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("conf: DATABASE_URL is required for the %q store driver", c.StoreDriver)
		}
	default:
		return fmt.Errorf("conf: unknown store driver %q", c.StoreDriver)
	}

	switch c.EventsDriver {
	case EventsNone, EventsMemory:
	case EventsRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("conf: REDIS_URL is required for the %q events driver", c.EventsDriver)
		}
	default:
		return fmt.Errorf("conf: unknown events driver %q", c.EventsDriver)
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("conf: invalid port %d", c.API.Port)
	}

	return nil
}

func loadEnvironment(filename string) error {
	var err error
	if filename != "" {
		err = godotenv.Overload(filename)
	} else {
		err = godotenv.Load()
		// handle if .env file does not exist, this is OK
		if os.IsNotExist(err) {
			return nil
		}
	}
	return err
}

// LoadGlobal loads configuration from an optional env file and the environment.
func LoadGlobal(filename string) (*GlobalConfiguration, error) {
	if err := loadEnvironment(filename); err != nil {
		return nil, err
	}

	config := new(GlobalConfiguration)
	if err := envconfig.Process("siggy", config); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &config.Explicit); err != nil {
		return nil, err
	}

	if err := ConfigureLogging(&config.Logging); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
