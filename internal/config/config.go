// Package config loads server configuration from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// Dev relaxes checks that only matter in production, such as requiring
	// an explicit JWT secret.
	Dev bool `yaml:"dev"`

	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Voucher VoucherConfig `yaml:"voucher"`
	Log     LogConfig     `yaml:"log"`
}

type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	MetricsAddr string   `yaml:"metrics_addr"`
	CORSOrigins []string `yaml:"cors_origins"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver       string        `yaml:"driver"`
	DSN          string        `yaml:"dsn"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`

	// LegacyPlaintext accepts credentials still stored in plaintext and
	// rehashes them on successful login. Turn off once migration is done.
	LegacyPlaintext bool `yaml:"legacy_plaintext"`

	MinPINLength int `yaml:"min_pin_length"`
	BcryptCost   int `yaml:"bcrypt_cost"`
}

type LedgerConfig struct {
	DefaultDivisor       int64         `yaml:"default_divisor"`
	RetryAttempts        uint          `yaml:"retry_attempts"`
	RetryInitialInterval time.Duration `yaml:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `yaml:"retry_max_interval"`
}

type VoucherConfig struct {
	Prefix       string `yaml:"prefix"`
	SuffixLength int    `yaml:"suffix_length"`
	CodeAttempts int    `yaml:"code_attempts"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DevJWTSecret is used when no secret is configured in dev mode.
const DevJWTSecret = "poinku-dev-secret-do-not-use-in-production"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			MetricsAddr:     ":9090",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:      "sqlite",
			DSN:         "./data/poinku.db",
			BusyTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL:   time.Hour,
			MinPINLength: 4,
			BcryptCost:   10,
		},
		Ledger: LedgerConfig{
			DefaultDivisor:       25000,
			RetryAttempts:        3,
			RetryInitialInterval: 20 * time.Millisecond,
			RetryMaxInterval:     250 * time.Millisecond,
		},
		Voucher: VoucherConfig{
			Prefix:       "VOU",
			SuffixLength: 6,
			CodeAttempts: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// POINKU_CONFIG is consulted; a missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("POINKU_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	var errs []error
	parse := func(key string, fn func(string) error) {
		if v := getenv(key); v != "" {
			if err := fn(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str(&c.HTTP.Addr, "POINKU_HTTP_ADDR")
	str(&c.HTTP.MetricsAddr, "POINKU_METRICS_ADDR")
	parse("POINKU_CORS_ORIGINS", func(v string) error {
		c.HTTP.CORSOrigins = splitList(v)
		return nil
	})

	str(&c.Storage.Driver, "POINKU_DB_DRIVER")
	str(&c.Storage.DSN, "POINKU_DB_DSN", "DB_PATH")

	str(&c.Auth.JWTSecret, "JWT_SECRET")
	parse("POINKU_SESSION_TTL", func(v string) (err error) {
		c.Auth.SessionTTL, err = time.ParseDuration(v)
		return err
	})
	parse("POINKU_LEGACY_PLAINTEXT", func(v string) (err error) {
		c.Auth.LegacyPlaintext, err = strconv.ParseBool(v)
		return err
	})

	parse("POINKU_DEFAULT_DIVISOR", func(v string) (err error) {
		c.Ledger.DefaultDivisor, err = strconv.ParseInt(v, 10, 64)
		return err
	})

	str(&c.Voucher.Prefix, "POINKU_VOUCHER_PREFIX")

	str(&c.Log.Level, "LOG_LEVEL")
	str(&c.Log.Format, "LOG_FORMAT")

	parse("POINKU_DEV", func(v string) (err error) {
		c.Dev, err = strconv.ParseBool(v)
		return err
	})

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects configurations the server cannot run with. In dev mode a
// missing JWT secret is replaced with DevJWTSecret.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	if c.Storage.DSN == "" {
		errs = append(errs, errors.New("storage.dsn: is required"))
	}

	if c.Auth.JWTSecret == "" {
		if c.Dev {
			c.Auth.JWTSecret = DevJWTSecret
		} else {
			errs = append(errs, errors.New("auth.jwt_secret: is required outside dev mode (set JWT_SECRET)"))
		}
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl: must be positive"))
	}
	if c.Auth.MinPINLength < 4 {
		errs = append(errs, errors.New("auth.min_pin_length: must be at least 4"))
	}

	if c.Ledger.DefaultDivisor <= 0 {
		errs = append(errs, errors.New("ledger.default_divisor: must be positive"))
	}
	if c.Ledger.RetryAttempts == 0 {
		errs = append(errs, errors.New("ledger.retry_attempts: must be at least 1"))
	}

	prefix := strings.ToUpper(c.Voucher.Prefix)
	c.Voucher.Prefix = prefix
	if prefix == "" || strings.ContainsAny(prefix, "- \t") {
		errs = append(errs, fmt.Errorf("voucher.prefix: %q must be non-empty without dashes or spaces", prefix))
	}
	if c.Voucher.SuffixLength < 4 || c.Voucher.SuffixLength > 16 {
		errs = append(errs, errors.New("voucher.suffix_length: must be between 4 and 16"))
	}
	if c.Voucher.CodeAttempts <= 0 {
		errs = append(errs, errors.New("voucher.code_attempts: must be positive"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
