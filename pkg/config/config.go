package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable consumed by the platform.
	EnvPrefix = "masterprint"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Delivery DeliveryConfig
	Migrate  MigrateConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Delivery.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MASTERPRINT_APP_ENV" required:"true"`
	Port         string `envconfig:"MASTERPRINT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MASTERPRINT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MASTERPRINT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MASTERPRINT_DB_DSN"`
	Driver string `envconfig:"MASTERPRINT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MASTERPRINT_DB_HOST"`
	Port     int    `envconfig:"MASTERPRINT_DB_PORT" default:"5432"`
	User     string `envconfig:"MASTERPRINT_DB_USER"`
	Password string `envconfig:"MASTERPRINT_DB_PASSWORD"`
	Name     string `envconfig:"MASTERPRINT_DB_NAME"`
	SSLMode  string `envconfig:"MASTERPRINT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MASTERPRINT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MASTERPRINT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MASTERPRINT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MASTERPRINT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN builds the DSN from the discrete host settings when one was not
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either MASTERPRINT_DB_DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"MASTERPRINT_REDIS_URL"`
	Address      string        `envconfig:"MASTERPRINT_REDIS_ADDR"`
	Password     string        `envconfig:"MASTERPRINT_REDIS_PASSWORD"`
	DB           int           `envconfig:"MASTERPRINT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MASTERPRINT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MASTERPRINT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MASTERPRINT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MASTERPRINT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MASTERPRINT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MASTERPRINT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MASTERPRINT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MASTERPRINT_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type DeliveryConfig struct {
	// DefaultCommissionPct is applied when a completion request omits the
	// commission percentage.
	DefaultCommissionPct int `envconfig:"MASTERPRINT_DELIVERY_DEFAULT_COMMISSION_PCT" default:"70"`
}

func (d DeliveryConfig) validate() error {
	if d.DefaultCommissionPct < 0 || d.DefaultCommissionPct > 100 {
		return fmt.Errorf("default commission percentage must be within [0,100], got %d", d.DefaultCommissionPct)
	}
	return nil
}

type MigrateConfig struct {
	AutoRun bool   `envconfig:"MASTERPRINT_MIGRATE_AUTORUN" default:"false"`
	Dir     string `envconfig:"MASTERPRINT_MIGRATE_DIR" default:"migrations"`
}
