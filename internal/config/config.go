package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/currency"

	pkgconfig "github.com/utafrali/FoodStore/pkg/config"
	"github.com/utafrali/FoodStore/pkg/database"
	"github.com/utafrali/FoodStore/pkg/tracing"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Storage backends for uploaded images.
const (
	StorageDisk   = "disk"
	StorageGCS    = "gcs"
	StorageMemory = "memory"
)

// API holds the configuration of the food API server.
type API struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"4000"`

	Postgres database.PostgresConfig
	Redis    database.RedisConfig
	Tracing  tracing.Config

	SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"0"`
	CartTTL            time.Duration `env:"CART_TTL" envDefault:"720h"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"0"`

	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"disk"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	GCSBucket      string `env:"GCS_BUCKET"`
	GCSPublicURL   string `env:"GCS_PUBLIC_URL"`
	PublicURL      string `env:"PUBLIC_URL"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" envDefault:"5"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" envDefault:"10"`
	// TrustedProxies are the CIDRs or addresses whose X-Forwarded-For is
	// believed when keying the auth rate limiter. Empty trusts no one.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// LoadAPI reads the API configuration from the environment.
func LoadAPI() (*API, error) {
	cfg := &API{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load api config: %w", err)
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "foodapi"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *API) validate() error {
	var errs []error
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if c.CartTTL <= 0 {
		errs = append(errs, fmt.Errorf("CART_TTL must be positive, got %s", c.CartTTL))
	}
	switch c.StorageBackend {
	case StorageDisk:
		if strings.TrimSpace(c.UploadDir) == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required for disk storage"))
		}
	case StorageGCS:
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET is required for gcs storage"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive"))
	}
	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be explicitly set in %q mode", c.Environment))
		} else if len(c.JWTSecret) < 32 {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret)))
		}
	}
	return errors.Join(errs...)
}

// Token stores of the storefront shell.
const (
	TokenStoreFile  = "file"
	TokenStoreRedis = "redis"
)

// Storefront holds the configuration of the storefront shell.
type Storefront struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
	APIURL   string `env:"STOREFRONT_API_URL" envDefault:"http://localhost:4000"`
	Currency string `env:"STOREFRONT_CURRENCY" envDefault:"INR"`

	RequestTimeout time.Duration `env:"STOREFRONT_REQUEST_TIMEOUT" envDefault:"15s"`
	CircuitBreaker bool          `env:"STOREFRONT_CIRCUIT_BREAKER" envDefault:"true"`

	TokenStore string               `env:"STOREFRONT_TOKEN_STORE" envDefault:"file"`
	TokenFile  string               `env:"STOREFRONT_TOKEN_FILE" envDefault:".foodstore/tokens.json"`
	TokenTTL   time.Duration        `env:"STOREFRONT_TOKEN_TTL" envDefault:"0"`
	Redis      database.RedisConfig `envPrefix:"STOREFRONT_"`

	// Unit is the parsed Currency.
	Unit currency.Unit
}

// LoadStorefront reads the storefront configuration from the environment.
func LoadStorefront() (*Storefront, error) {
	cfg := &Storefront{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Storefront) validate() error {
	var errs []error
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid STOREFRONT_API_URL %q", c.APIURL))
	}
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid STOREFRONT_CURRENCY %q: %w", c.Currency, err))
	} else {
		c.Unit = unit
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("STOREFRONT_REQUEST_TIMEOUT must be positive"))
	}
	switch c.TokenStore {
	case TokenStoreFile:
		if c.TokenFile == "" {
			errs = append(errs, errors.New("STOREFRONT_TOKEN_FILE is required for file token store"))
		}
	case TokenStoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown STOREFRONT_TOKEN_STORE %q", c.TokenStore))
	}
	return errors.Join(errs...)
}
