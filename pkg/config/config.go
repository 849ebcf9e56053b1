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
	Billing      BillingConfig
	Notify       NotifyConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.App.IsProd() && cfg.FeatureFlags.UseSQLite {
		return nil, fmt.Errorf("%s cannot be enabled in %s", EnvUseSQLite, AppEnvProd)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Billing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"OCL_APP_ENV" required:"true"`
	Port         string   `envconfig:"OCL_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"OCL_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"OCL_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"OCL_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"OCL_DB_DSN"`
	SQLitePath string `envconfig:"OCL_SQLITE_PATH" default:"ocl.db"`

	LegacyHost     string `envconfig:"OCL_DB_HOST"`
	LegacyPort     int    `envconfig:"OCL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OCL_DB_USER"`
	LegacyPassword string `envconfig:"OCL_DB_PASSWORD"`
	LegacyName     string `envconfig:"OCL_DB_NAME"`
	LegacySSLMode  string `envconfig:"OCL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OCL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OCL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OCL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OCL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OCL_REDIS_URL"`
	Address      string        `envconfig:"OCL_REDIS_ADDR"`
	Password     string        `envconfig:"OCL_REDIS_PASSWORD"`
	DB           int           `envconfig:"OCL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OCL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OCL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OCL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OCL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OCL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"OCL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"OCL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"OCL_JWT_EXPIRATION_MINUTES" required:"true"`
}

// SessionTTL is the lifetime of the Redis session that backs an access token.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// BillingConfig holds the biller profile and the rates used by invoice computation.
type BillingConfig struct {
	BillerName      string `envconfig:"OCL_BILLER_NAME" default:"OCL Services"`
	BillerState     string `envconfig:"OCL_BILLER_STATE" default:"Assam"`
	BillerGSTIN     string `envconfig:"OCL_BILLER_GSTIN"`
	BillerAddress   string `envconfig:"OCL_BILLER_ADDRESS" default:"Guwahati, Assam"`
	BillerEmail     string `envconfig:"OCL_BILLER_EMAIL"`
	BillerPhone     string `envconfig:"OCL_BILLER_PHONE"`
	InvoiceTemplate string `envconfig:"OCL_INVOICE_NUMBER_TEMPLATE" default:"OCL/{FY}/{YYYY}{MM}{DD}-{SEQ4}"`
	FuelRate        string `envconfig:"OCL_FUEL_SURCHARGE_RATE" default:"0.10"`
	GSTRate         string `envconfig:"OCL_GST_RATE" default:"0.18"`
	AWBCharge       string `envconfig:"OCL_AWB_CHARGE" default:"50"`
}

func (b BillingConfig) validate() error {
	for name, raw := range map[string]string{
		EnvFuelRate:  b.FuelRate,
		EnvGSTRate:   b.GSTRate,
		EnvAWBCharge: b.AWBCharge,
	} {
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s must be numeric: %w", name, err)
		}
		if value.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if strings.TrimSpace(b.BillerState) == "" {
		return fmt.Errorf("%s is required", EnvBillerState)
	}
	return nil
}

// Rates returns the parsed fuel, GST and AWB values. Load validates them upfront.
func (b BillingConfig) Rates() (fuel, gst, awb decimal.Decimal) {
	fuel, _ = decimal.NewFromString(strings.TrimSpace(b.FuelRate))
	gst, _ = decimal.NewFromString(strings.TrimSpace(b.GSTRate))
	awb, _ = decimal.NewFromString(strings.TrimSpace(b.AWBCharge))
	return fuel, gst, awb
}

type NotifyConfig struct {
	SubscriberBuffer int           `envconfig:"OCL_NOTIFY_SUBSCRIBER_BUFFER" default:"32"`
	StreamHeartbeat  time.Duration `envconfig:"OCL_NOTIFY_STREAM_HEARTBEAT" default:"25s"`
}

type RateLimitConfig struct {
	InvoiceWindow       time.Duration `envconfig:"OCL_RATE_LIMIT_INVOICE_WINDOW" default:"1m"`
	InvoiceIPLimit      int           `envconfig:"OCL_RATE_LIMIT_INVOICE_IP_LIMIT" default:"60"`
	InvoiceSubjectLimit int           `envconfig:"OCL_RATE_LIMIT_INVOICE_SUBJECT_LIMIT" default:"20"`
	LogoutWindow        time.Duration `envconfig:"OCL_RATE_LIMIT_LOGOUT_WINDOW" default:"1m"`
	LogoutIPLimit       int           `envconfig:"OCL_RATE_LIMIT_LOGOUT_IP_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"OCL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"OCL_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
