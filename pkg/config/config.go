package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cart         CartConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"AUTOHAUS_APP_ENV" required:"true"`
	Port         string `envconfig:"AUTOHAUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AUTOHAUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTOHAUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOHAUS_DB_DSN"`
	Driver string `envconfig:"AUTOHAUS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AUTOHAUS_DB_HOST"`
	LegacyPort     int    `envconfig:"AUTOHAUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AUTOHAUS_DB_USER"`
	LegacyPassword string `envconfig:"AUTOHAUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"AUTOHAUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"AUTOHAUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUTOHAUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUTOHAUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOHAUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOHAUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOHAUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AUTOHAUS_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOHAUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOHAUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOHAUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOHAUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOHAUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOHAUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOHAUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AUTOHAUS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AUTOHAUS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AUTOHAUS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CartConfig struct {
	// TTL bounds how long an untouched cart survives in the key-value store.
	TTL time.Duration `envconfig:"AUTOHAUS_CART_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AUTOHAUS_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"AUTOHAUS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"AUTOHAUS_PUBSUB_NOTIFICATION_TOPIC" default:"ah-notification-events"`
	NotificationSubscription string `envconfig:"AUTOHAUS_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"AUTOHAUS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"AUTOHAUS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"AUTOHAUS_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
