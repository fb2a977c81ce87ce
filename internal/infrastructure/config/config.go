package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StoreDriver selects the persistence backend: "postgres" or "mongo".
	StoreDriver string `env:"STORE_DRIVER, default=postgres"`

	Auth     AuthConfig
	Cookie   CookieConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Throttle ThrottleConfig
	Audit    AuditConfig
}

type AuthConfig struct {
	SecretKey            string `env:"SECRET_KEY"`
	Algorithm            string `env:"ALGORITHM,                    default=HS256"`
	AccessExpireMinutes  int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES,  default=15"`
	RefreshExpireMinutes int    `env:"REFRESH_TOKEN_EXPIRE_MINUTES, default=10080"`
	BcryptCost           int    `env:"BCRYPT_COST,                  default=10"`
}

// AccessTTL is the lifetime of access tokens.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessExpireMinutes) * time.Minute
}

// RefreshTTL is the lifetime of refresh tokens.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshExpireMinutes) * time.Minute
}

type CookieConfig struct {
	Secure bool   `env:"COOKIE_SECURE, default=false"`
	Domain string `env:"COOKIE_DOMAIN"`
}

type PostgresConfig struct {
	URL        string `env:"DATABASE_URL"`
	Host       string `env:"DB_HOST,            default=localhost"`
	Port       int    `env:"DB_PORT,            default=5432"`
	User       string `env:"DB_USER,            default=postgres"`
	Password   string `env:"DB_PASS"`
	Name       string `env:"DB_NAME,            default=content_service"`
	SSLMode    string `env:"DB_SSLMODE,         default=disable"`
	Migrations bool   `env:"MIGRATIONS_ENABLED, default=true"`
}

// DSN returns DATABASE_URL when set, otherwise a URL assembled from the
// DB_* variables.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.Name,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	return u.String()
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=content_service"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type ThrottleConfig struct {
	// MaxAttempts of 0 disables login throttling.
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS,   default=5"`
	Window      time.Duration `env:"LOGIN_LOCKOUT_WINDOW, default=15m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.Auth.Algorithm = strings.ToUpper(cfg.Auth.Algorithm)
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("ALGORITHM %q is not supported", c.Auth.Algorithm))
	}
	if c.Auth.AccessExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.Auth.RefreshExpireMinutes <= c.Auth.AccessExpireMinutes {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_MINUTES must exceed ACCESS_TOKEN_EXPIRE_MINUTES"))
	}
	switch c.StoreDriver {
	case DriverPostgres, DriverMongo:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not supported", c.StoreDriver))
	}
	if c.Throttle.MaxAttempts < 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must not be negative"))
	}
	if c.Throttle.MaxAttempts > 0 && c.Throttle.Window <= 0 {
		errs = append(errs, errors.New("LOGIN_LOCKOUT_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}
