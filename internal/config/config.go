// Package config loads server and CLI configuration.
package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Google      GoogleConfig      `yaml:"google"`
	Redis       RedisConfig       `yaml:"redis"`
	Cache       CacheConfig       `yaml:"cache"`
	Audit       AuditConfig       `yaml:"audit"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN              string        `yaml:"dsn"               env:"DATABASE_URL"               env-required:"true"`
	MaxConns         int32         `yaml:"max_conns"         env:"DATABASE_MAX_CONNS"         env-default:"20"`
	MinConns         int32         `yaml:"min_conns"         env:"DATABASE_MIN_CONNS"         env-default:"2"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime" env:"DATABASE_MAX_CONN_LIFETIME" env-default:"1h"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle"     env:"DATABASE_MAX_CONN_IDLE"     env-default:"30m"`
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DATABASE_STATEMENT_TIMEOUT" env-default:"30s"`
	// AutoMigrate applies pending goose migrations on startup.
	AutoMigrate bool `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE" env-default:"false"`
}

// AuthConfig holds token and password settings.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"        env:"AUTH_JWT_SECRET"        env-required:"true"`
	JWTIssuer       string        `yaml:"jwt_issuer"        env:"AUTH_JWT_ISSUER"        env-default:"datacatalog"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"  env:"AUTH_ACCESS_TOKEN_TTL"  env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"AUTH_REFRESH_TOKEN_TTL" env-default:"168h"`
	BcryptCost      int           `yaml:"bcrypt_cost"       env:"AUTH_BCRYPT_COST"       env-default:"10"`
}

// GoogleConfig enables Google sign-in when ClientID is set.
type GoogleConfig struct {
	Issuer       string `yaml:"issuer"        env:"GOOGLE_ISSUER"        env-default:"https://accounts.google.com"`
	ClientID     string `yaml:"client_id"     env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `yaml:"redirect_url"  env:"GOOGLE_REDIRECT_URL"`
	CookieKey    string `yaml:"cookie_key"    env:"GOOGLE_COOKIE_KEY"`
	SecureCookie bool   `yaml:"secure_cookie" env:"GOOGLE_SECURE_COOKIE" env-default:"false"`
}

// Enabled reports whether any Google setting was provided.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" || g.ClientSecret != "" || g.RedirectURL != ""
}

// RedisConfig configures the optional tag cache backend.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

// CacheConfig holds in-process and redis cache lifetimes.
type CacheConfig struct {
	RoleSize int           `yaml:"role_size" env:"CACHE_ROLE_SIZE" env-default:"1024"`
	RoleTTL  time.Duration `yaml:"role_ttl"  env:"CACHE_ROLE_TTL"  env-default:"30s"`
	TagTTL   time.Duration `yaml:"tag_ttl"   env:"CACHE_TAG_TTL"   env-default:"5m"`
}

// AuditConfig controls audit payload storage.
type AuditConfig struct {
	CompressThreshold int `yaml:"compress_threshold" env:"AUDIT_COMPRESS_THRESHOLD" env-default:"10240"`
}

// IdempotencyConfig controls X-Idempotency-Key handling.
type IdempotencyConfig struct {
	Enabled bool          `yaml:"enabled" env:"IDEMPOTENCY_ENABLED" env-default:"true"`
	TTL     time.Duration `yaml:"ttl"     env:"IDEMPOTENCY_TTL"     env-default:"24h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string `yaml:"level"       env:"LOG_LEVEL"       env-default:"info"`
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT" env-default:"false"`
}
