package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRequiresSecret(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")

	cfg = Default()
	cfg.Dev = true
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DevJWTSecret, cfg.Auth.JWTSecret)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 4, cfg.Auth.MinPINLength)
	assert.Equal(t, int64(25000), cfg.Ledger.DefaultDivisor)
	assert.Equal(t, uint(3), cfg.Ledger.RetryAttempts)
	assert.Equal(t, "VOU", cfg.Voucher.Prefix)
	assert.Equal(t, 6, cfg.Voucher.SuffixLength)
	assert.Equal(t, 5, cfg.Voucher.CodeAttempts)
	assert.False(t, cfg.Auth.LegacyPlaintext)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poinku.yaml")
	yamlData := `
http:
  addr: ":7000"
  cors_origins: ["https://till.example.com"]
storage:
  driver: postgres
  dsn: postgres://localhost/poinku
auth:
  jwt_secret: from-file
  session_ttl: 30m
  legacy_plaintext: true
ledger:
  default_divisor: 10000
voucher:
  prefix: bp
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

	t.Setenv("POINKU_HTTP_ADDR", ":7100")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7100", cfg.HTTP.Addr, "env overrides file")
	assert.Equal(t, []string{"https://till.example.com"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/poinku", cfg.Storage.DSN)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.True(t, cfg.Auth.LegacyPlaintext)
	assert.Equal(t, int64(10000), cfg.Ledger.DefaultDivisor)
	assert.Equal(t, "BP", cfg.Voucher.Prefix)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, uint(3), cfg.Ledger.RetryAttempts)
	assert.Equal(t, ":9090", cfg.HTTP.MetricsAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DB_PATH":                 "/var/lib/poinku.db",
		"POINKU_CORS_ORIGINS":     "https://a.example, https://b.example,",
		"POINKU_SESSION_TTL":      "2h",
		"POINKU_DEFAULT_DIVISOR":  "5000",
		"POINKU_LEGACY_PLAINTEXT": "true",
		"POINKU_DEV":              "1",
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "/var/lib/poinku.db", cfg.Storage.DSN)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, int64(5000), cfg.Ledger.DefaultDivisor)
	assert.True(t, cfg.Auth.LegacyPlaintext)
	assert.True(t, cfg.Dev)

	t.Run("POINKU_DB_DSN wins over DB_PATH", func(t *testing.T) {
		env["POINKU_DB_DSN"] = "/srv/poinku.db"
		cfg := Default()
		require.NoError(t, cfg.applyEnv(func(k string) string { return env[k] }))
		assert.Equal(t, "/srv/poinku.db", cfg.Storage.DSN)
	})

	t.Run("malformed values", func(t *testing.T) {
		bad := map[string]string{
			"POINKU_SESSION_TTL":     "soon",
			"POINKU_DEFAULT_DIVISOR": "many",
		}
		err := Default().applyEnv(func(k string) string { return bad[k] })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POINKU_SESSION_TTL")
		assert.Contains(t, err.Error(), "POINKU_DEFAULT_DIVISOR")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mysql" }, "storage.driver"},
		{"empty dsn", func(c *Config) { c.Storage.DSN = "" }, "storage.dsn"},
		{"zero divisor", func(c *Config) { c.Ledger.DefaultDivisor = 0 }, "ledger.default_divisor"},
		{"short pin", func(c *Config) { c.Auth.MinPINLength = 3 }, "auth.min_pin_length"},
		{"prefix with dash", func(c *Config) { c.Voucher.Prefix = "V-1" }, "voucher.prefix"},
		{"short suffix", func(c *Config) { c.Voucher.SuffixLength = 2 }, "voucher.suffix_length"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.JWTSecret = "secret"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
