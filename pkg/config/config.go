package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cart          CartConfig
	Cron          CronConfig
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
	Env          string `envconfig:"SKILLWAVE_APP_ENV" required:"true"`
	Port         string `envconfig:"SKILLWAVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SKILLWAVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SKILLWAVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SKILLWAVE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SKILLWAVE_DB_DSN"`
	Driver string `envconfig:"SKILLWAVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SKILLWAVE_DB_HOST"`
	LegacyPort     int    `envconfig:"SKILLWAVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SKILLWAVE_DB_USER"`
	LegacyPassword string `envconfig:"SKILLWAVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SKILLWAVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SKILLWAVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SKILLWAVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SKILLWAVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SKILLWAVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SKILLWAVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SKILLWAVE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SKILLWAVE_REDIS_ADDR"`
	Password     string        `envconfig:"SKILLWAVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SKILLWAVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SKILLWAVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SKILLWAVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SKILLWAVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SKILLWAVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SKILLWAVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SKILLWAVE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SKILLWAVE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SKILLWAVE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SKILLWAVE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SKILLWAVE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SKILLWAVE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SKILLWAVE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SKILLWAVE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SKILLWAVE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SKILLWAVE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SKILLWAVE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SKILLWAVE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SKILLWAVE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SKILLWAVE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SKILLWAVE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SKILLWAVE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SKILLWAVE_AUTO_MIGRATE" default:"false"`
}

// CartConfig carries cart lifecycle knobs and the presentation-only
// estimate constants returned alongside coupon application.
type CartConfig struct {
	ExpiryDays             int     `envconfig:"SKILLWAVE_CART_EXPIRY_DAYS" default:"30"`
	AbandonedRetentionDays int     `envconfig:"SKILLWAVE_CART_ABANDONED_RETENTION_DAYS" default:"30"`
	TaxRate                float64 `envconfig:"SKILLWAVE_CART_TAX_RATE" default:"0.085"`
	ProcessingFee          float64 `envconfig:"SKILLWAVE_CART_PROCESSING_FEE" default:"2.50"`
	AvailableCouponsLimit  int     `envconfig:"SKILLWAVE_CART_AVAILABLE_COUPONS_LIMIT" default:"10"`
}

type CronConfig struct {
	CycleInterval time.Duration `envconfig:"SKILLWAVE_CRON_CYCLE_INTERVAL" default:"1m"`
	LockTTL       time.Duration `envconfig:"SKILLWAVE_CRON_LOCK_TTL" default:"5m"`
	MetricsPort   string        `envconfig:"SKILLWAVE_CRON_METRICS_PORT" default:"9090"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		db.DSN = "file::memory:?cache=shared"
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
