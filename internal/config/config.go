package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Port     int    `envconfig:"APP_PORT" default:"8080"`
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Crypto   CryptoConfig
	Graph    GraphConfig
	Workflow WorkflowConfig
}

// database configuration
type DBConfig struct {
	DSN          string        `envconfig:"DATABASE_URL" required:"true"`
	MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleTime  time.Duration `envconfig:"DB_MAX_IDLE_TIME" default:"15m"`
}

// redis configuration; the idempotency store falls back to an in-process
// map when Addr is empty
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:""`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// JWT configuration for the API edge
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

// encryption configuration for mailbox tokens at rest
type CryptoConfig struct {
	Secret string `envconfig:"AES_SECRET_KEY" required:"true"`
}

// Microsoft Graph configuration (mailbox connector + meeting provisioner)
type GraphConfig struct {
	BaseURL      string        `envconfig:"GRAPH_BASE_URL" default:"https://graph.microsoft.com/v1.0"`
	TokenURL     string        `envconfig:"GRAPH_TOKEN_URL" default:"https://login.microsoftonline.com/common/oauth2/v2.0/token"`
	ClientID     string        `envconfig:"GRAPH_CLIENT_ID" default:""`
	ClientSecret string        `envconfig:"GRAPH_CLIENT_SECRET" default:""`
	Timeout      time.Duration `envconfig:"GRAPH_TIMEOUT" default:"30s"`
}

// WorkflowConfig exposes the behaviors the source left ambiguous.
type WorkflowConfig struct {
	// RejectPastSchedules turns on the guard the original never had:
	// scheduling an interview in the past fails validation.
	RejectPastSchedules bool `envconfig:"SCHEDULE_REJECT_PAST" default:"false"`
	// DedupRecipients strips the candidate address from CC/BCC lists.
	DedupRecipients bool `envconfig:"NOTIFY_DEDUP_RECIPIENTS" default:"false"`
	// IdempotencyTTL bounds how long a provisioned meeting is reused for
	// retried schedule calls with identical arguments.
	IdempotencyTTL time.Duration `envconfig:"SCHEDULE_IDEMPOTENCY_TTL" default:"24h"`
	// Organizer identity stamped into calendar artifacts.
	OrganizerName  string `envconfig:"ORGANIZER_NAME" default:""`
	OrganizerEmail string `envconfig:"ORGANIZER_EMAIL" default:""`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Env] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Env)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}
	if c.DB.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	secretLen := len(c.Crypto.Secret)
	if secretLen != 16 && secretLen != 24 && secretLen != 32 {
		return fmt.Errorf("AES_SECRET_KEY must be 16, 24, or 32 bytes (got %d)", secretLen)
	}
	if c.Workflow.IdempotencyTTL <= 0 {
		return fmt.Errorf("SCHEDULE_IDEMPOTENCY_TTL must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
