package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FLUXORI"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "FLUXORI_APP_ENV"
	EnvPort     = "FLUXORI_APP_PORT"
	EnvDBDSN    = "FLUXORI_DB_DSN"
	EnvDBHost   = "FLUXORI_DB_HOST"
	EnvDBUser   = "FLUXORI_DB_USER"
	EnvDBName   = "FLUXORI_DB_NAME"
	EnvRedisURL = "FLUXORI_REDIS_URL"

	EnvJWTSecret  = "FLUXORI_JWT_SECRET"
	EnvJWTIssuer  = "FLUXORI_JWT_ISSUER"
	EnvJWTExpMins = "FLUXORI_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Repricing    RepricingConfig
	Amazon       AmazonConfig
	Takealot     TakealotConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FLUXORI_APP_ENV" required:"true"`
	Port         string `envconfig:"FLUXORI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FLUXORI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLUXORI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FLUXORI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FLUXORI_DB_DSN"`
	Driver string `envconfig:"FLUXORI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLUXORI_DB_HOST"`
	LegacyPort     int    `envconfig:"FLUXORI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLUXORI_DB_USER"`
	LegacyPassword string `envconfig:"FLUXORI_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLUXORI_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLUXORI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLUXORI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLUXORI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLUXORI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLUXORI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLUXORI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FLUXORI_REDIS_ADDR"`
	Password     string        `envconfig:"FLUXORI_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLUXORI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLUXORI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLUXORI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLUXORI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLUXORI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLUXORI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FLUXORI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FLUXORI_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FLUXORI_JWT_EXPIRATION_MINUTES" required:"true"`
}

// RepricingConfig tunes the scheduler and credit metering.
type RepricingConfig struct {
	TickInterval       time.Duration `envconfig:"FLUXORI_REPRICING_TICK_INTERVAL" default:"1m"`
	LockTTL            time.Duration `envconfig:"FLUXORI_REPRICING_LOCK_TTL" default:"10m"`
	CostPerPriceUpdate int           `envconfig:"FLUXORI_REPRICING_COST_PER_PRICE_UPDATE" default:"1"`
	CostPerBuyBoxCheck int           `envconfig:"FLUXORI_REPRICING_COST_PER_BUYBOX_CHECK" default:"1"`
}

type AmazonConfig struct {
	BaseURL        string        `envconfig:"FLUXORI_AMAZON_BASE_URL" default:"https://sellingpartnerapi-eu.amazon.com"`
	APIKey         string        `envconfig:"FLUXORI_AMAZON_API_KEY"`
	SellerID       string        `envconfig:"FLUXORI_AMAZON_SELLER_ID"`
	Timeout        time.Duration `envconfig:"FLUXORI_AMAZON_TIMEOUT" default:"30s"`
	RequestsPerSec float64       `envconfig:"FLUXORI_AMAZON_REQUESTS_PER_SEC" default:"5"`
}

type TakealotConfig struct {
	BaseURL        string        `envconfig:"FLUXORI_TAKEALOT_BASE_URL" default:"https://seller-api.takealot.com"`
	APIKey         string        `envconfig:"FLUXORI_TAKEALOT_API_KEY"`
	Timeout        time.Duration `envconfig:"FLUXORI_TAKEALOT_TIMEOUT" default:"30s"`
	RequestsPerSec float64       `envconfig:"FLUXORI_TAKEALOT_REQUESTS_PER_SEC" default:"2"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FLUXORI_AUTO_MIGRATE" default:"false"`
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
