package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	Stripe       StripeConfig
	OpenPix      OpenPixConfig
	Commission   CommissionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Commission.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SPACERENT_APP_ENV" required:"true"`
	Port         string `envconfig:"SPACERENT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SPACERENT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPACERENT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"SPACERENT_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SPACERENT_DB_DSN"`
	Driver string `envconfig:"SPACERENT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SPACERENT_DB_HOST"`
	LegacyPort     int    `envconfig:"SPACERENT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SPACERENT_DB_USER"`
	LegacyPassword string `envconfig:"SPACERENT_DB_PASSWORD"`
	LegacyName     string `envconfig:"SPACERENT_DB_NAME"`
	LegacySSLMode  string `envconfig:"SPACERENT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPACERENT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPACERENT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPACERENT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPACERENT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPACERENT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SPACERENT_REDIS_ADDR"`
	Password     string        `envconfig:"SPACERENT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPACERENT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPACERENT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPACERENT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPACERENT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPACERENT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPACERENT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SPACERENT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SPACERENT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SPACERENT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SPACERENT_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	WebhookIdempotencyTTL time.Duration `envconfig:"SPACERENT_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type StripeConfig struct {
	APIKey   string `envconfig:"SPACERENT_STRIPE_API_KEY"`
	Secret   string `envconfig:"SPACERENT_STRIPE_SECRET"`
	Env      string `envconfig:"SPACERENT_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"SPACERENT_STRIPE_CURRENCY" default:"brl"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type OpenPixConfig struct {
	AppID   string        `envconfig:"SPACERENT_OPENPIX_APP_ID"`
	BaseURL string        `envconfig:"SPACERENT_OPENPIX_BASE_URL" default:"https://api.openpix.com.br"`
	Timeout time.Duration `envconfig:"SPACERENT_OPENPIX_TIMEOUT" default:"10s"`
}

// CommissionConfig holds the fallback terms used when no global row exists.
type CommissionConfig struct {
	DefaultType  string        `envconfig:"SPACERENT_COMMISSION_DEFAULT_TYPE" default:"percentage"`
	DefaultValue string        `envconfig:"SPACERENT_COMMISSION_DEFAULT_VALUE" default:"10"`
	CacheTTL     time.Duration `envconfig:"SPACERENT_COMMISSION_CACHE_TTL" default:"5m"`
}

// DefaultValueDecimal parses DefaultValue; validate guarantees it is numeric after Load.
func (c CommissionConfig) DefaultValueDecimal() decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(c.DefaultValue))
	if err != nil {
		return decimal.NewFromInt(10)
	}
	return value
}

func (c CommissionConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DefaultType)) {
	case "percentage", "fixed":
	default:
		return fmt.Errorf("%s must be percentage or fixed", EnvCommissionDefaultType)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(c.DefaultValue))
	if err != nil {
		return fmt.Errorf("%s must be numeric: %w", EnvCommissionDefaultValue, err)
	}
	if value.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvCommissionDefaultValue)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
