package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-very-long-jwt-secret-for-testing-32+"

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/catalog")
	t.Setenv("AUTH_JWT_SECRET", testSecret)
}

// chdirTemp isolates the test from any .env or config.yaml in the package dir.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_EnvDefaults(t *testing.T) {
	chdirTemp(t)
	validEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, "datacatalog", cfg.Auth.JWTIssuer)
	assert.Equal(t, 10240, cfg.Audit.CompressThreshold)
	assert.True(t, cfg.Idempotency.Enabled)
	assert.False(t, cfg.Google.Enabled())
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	dir := chdirTemp(t)
	validEnv(t)

	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  dsn: "postgres://yaml@localhost/catalog"
auth:
  jwt_secret: "`+testSecret+`"
log:
  level: debug
`), 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	chdirTemp(t)
	validEnv(t)
	t.Setenv("CONFIG_PATH", "/nonexistent/catalog.yaml")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DATABASE_URL", "postgres://env@localhost/catalog")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("AUTH_JWT_SECRET="+testSecret+"\nDATABASE_URL=postgres://dotenv@localhost/catalog\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("AUTH_JWT_SECRET") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres://env@localhost/catalog", cfg.Database.DSN, "process env wins over .env")
}

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{DSN: "postgres://x", MinConns: 2, MaxConns: 10},
		Auth: AuthConfig{
			JWTSecret:       testSecret,
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
			BcryptCost:      10,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: "jwt_secret"},
		{name: "bcrypt cost", mutate: func(c *Config) { c.Auth.BcryptCost = 2 }, wantErr: "bcrypt_cost"},
		{name: "port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "pool bounds", mutate: func(c *Config) { c.Database.MinConns = 20 }, wantErr: "min_conns"},
		{name: "partial google", mutate: func(c *Config) { c.Google.ClientID = "id" }, wantErr: "client_secret, redirect_url"},
		{
			name: "complete google",
			mutate: func(c *Config) {
				c.Google = GoogleConfig{ClientID: "id", ClientSecret: "s", RedirectURL: "http://localhost/cb"}
			},
		},
		{
			name: "bad cookie key",
			mutate: func(c *Config) {
				c.Google = GoogleConfig{ClientID: "id", ClientSecret: "s", RedirectURL: "http://x", CookieKey: "abc"}
			},
			wantErr: "cookie_key",
		},
		{name: "redis scheme", mutate: func(c *Config) { c.Redis.URL = "localhost:6379" }, wantErr: "redis.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
