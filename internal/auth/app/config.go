package app

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port      int    `env:"PORT"       envDefault:"3000"`
	Env       string `env:"ENV"        envDefault:"dev"`  // dev, staging, prod; dev logs codes when mail fails
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"` // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json, text

	DatabaseDriver string         `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseFile   string         `env:"DATABASE_FILE"   envDefault:"minipro.db"`
	DatabaseURL    string         `env:"DATABASE_URL"` // Postgres DSN; built from PG_* when empty
	Postgres       PostgresConfig `envPrefix:"PG_"`

	PepperFile       string `env:"PEPPER_FILE"        envDefault:"pepper"`
	OTPExpiryMinutes int    `env:"OTP_EXPIRY_MINUTES" envDefault:"10"`

	// SessionSecret is read so existing deployments keep starting; session
	// tokens are random and need no signing key.
	SessionSecret       string        `env:"SESSION_SECRET"`
	SessionTTL          time.Duration `env:"SESSION_TTL"           envDefault:"24h"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME"   envDefault:"minipro_session"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	ClientURL   string `env:"CLIENT_URL"   envDefault:"http://localhost:5173"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	Email EmailConfig `envPrefix:"EMAIL_"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

type PostgresConfig struct {
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"5432"`
	Database string `env:"DATABASE"`
}

// EmailConfig is the SMTP relay. Without a Host codes are only logged.
type EmailConfig struct {
	Host   string `env:"HOST"`
	Port   int    `env:"PORT"   envDefault:"587"`
	Secure bool   `env:"SECURE" envDefault:"false"`
	User   string `env:"USER"`
	Pass   string `env:"PASS"`
	From   string `env:"FROM"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// loadConfigFrom reads the configuration from environ instead of the process
// environment.
func loadConfigFrom(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			return fmt.Errorf("DATABASE_FILE is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.PostgresDSN() == "" {
			return fmt.Errorf("DATABASE_URL or PG_HOST and PG_DATABASE are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.OTPExpiryMinutes <= 0 {
		return fmt.Errorf("OTP_EXPIRY_MINUTES must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SessionCookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if _, err := url.ParseRequestURI(c.ClientURL); err != nil {
		return fmt.Errorf("invalid CLIENT_URL: %w", err)
	}
	return nil
}

// PostgresDSN returns DATABASE_URL, or a URL assembled from the PG_* variables.
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.Postgres.Host == "" || c.Postgres.Database == "" {
		return ""
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Postgres.Host, strconv.Itoa(c.Postgres.Port)),
		Path:   "/" + c.Postgres.Database,
	}
	if c.Postgres.User != "" {
		u.User = url.UserPassword(c.Postgres.User, c.Postgres.Password)
	}
	return u.String()
}

// OTPTTL is the validity window of a verification code.
func (c Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPExpiryMinutes) * time.Minute
}

// MailConfigured reports whether an SMTP relay is set up.
func (c Config) MailConfigured() bool {
	return c.Email.Host != ""
}
