package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Gateway   GatewayConfig
	Vault     VaultConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port     string `env:"SERVER_PORT" envDefault:"8080"`
	Env      string `env:"SERVER_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
	// CORSAllowedOrigins lists browser origins allowed to call the API; "*" allows any
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        int    `env:"DB_PORT" envDefault:"5432"`
	User        string `env:"DB_USER" envDefault:"postgres"`
	Password    string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName      string `env:"DB_NAME" envDefault:"payment_broker"`
	SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
}

// JWTConfig holds the admin token settings
type JWTConfig struct {
	Secret string        `env:"JWT_SECRET" envDefault:"change-this-in-production"`
	Expiry time.Duration `env:"JWT_EXPIRY" envDefault:"1h"`
}

// SecurityConfig holds the secret material the encryption service derives
// its keys from
type SecurityConfig struct {
	EncryptionKey string `env:"SECURITY_ENCRYPTION_KEY,notEmpty"`
	HashSalt      string `env:"SECURITY_HASH_SALT,notEmpty"`
}

// GatewayConfig locates the upstream payment gateway
type GatewayConfig struct {
	BaseURL      string        `env:"GATEWAY_BASE_URL" envDefault:"https://secure.nmi.com"`
	TransactPath string        `env:"GATEWAY_TRANSACT_PATH" envDefault:"/api/transact.php"`
	QueryPath    string        `env:"GATEWAY_QUERY_PATH" envDefault:"/api/query.php"`
	Timeout      time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"30s"`
}

// VaultConfig selects the Secrets Manager account and cache lifetime
type VaultConfig struct {
	Region          string        `env:"VAULT_REGION" envDefault:"us-east-1"`
	Endpoint        string        `env:"VAULT_ENDPOINT"`
	AccessKeyID     string        `env:"VAULT_ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"VAULT_SECRET_ACCESS_KEY"`
	MaxAttempts     int           `env:"VAULT_MAX_ATTEMPTS" envDefault:"3"`
	CacheTTL        time.Duration `env:"VAULT_CACHE_TTL" envDefault:"15m"`
}

// EventsConfig controls where domain events are published
type EventsConfig struct {
	Channel string `env:"EVENTS_CHANNEL" envDefault:"broker:events"`
	Publish bool   `env:"EVENTS_PUBLISH" envDefault:"true"`
}

// RateLimitConfig bounds per-tenant request rates; RPS 0 disables it
type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	Burst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

var loadDotenv = godotenv.Load

// Load reads configuration from the environment, after a local .env file
// when one exists
func Load() (*Config, error) {
	_ = loadDotenv()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
