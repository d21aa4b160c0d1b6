package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=5000"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	CORSOrigins     []string      `env:"CORS_ALLOW_ORIGINS, default=*"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	Payment  PaymentConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=doctors_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type FirebaseConfig struct {
	ProjectID string `env:"FIREBASE_PROJECT_ID"`
	// ServiceAccount is the raw service-account JSON; only project_id is read.
	ServiceAccount string `env:"FIREBASE_SERVICE_ACCOUNT"`
	JWKSURL        string `env:"FIREBASE_JWKS_URL, default=https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"`
}

type PaymentConfig struct {
	StripeSecret string `env:"STRIPE_SECRET"`
	Currency     string `env:"PAYMENT_CURRENCY, default=usd"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l and resolves derived settings.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Firebase.resolveProjectID(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (f *FirebaseConfig) resolveProjectID() error {
	if f.ProjectID != "" || f.ServiceAccount == "" {
		return nil
	}
	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(f.ServiceAccount), &sa); err != nil {
		return fmt.Errorf("FIREBASE_SERVICE_ACCOUNT: %w", err)
	}
	f.ProjectID = sa.ProjectID
	return nil
}
