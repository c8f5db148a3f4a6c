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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Notifier     NotifierConfig
	Cron         CronConfig
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
	Env          string `envconfig:"FINLY_APP_ENV" required:"true"`
	Port         string `envconfig:"FINLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FINLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FINLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FINLY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FINLY_DB_DSN"`
	Driver string `envconfig:"FINLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FINLY_DB_HOST"`
	LegacyPort     int    `envconfig:"FINLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FINLY_DB_USER"`
	LegacyPassword string `envconfig:"FINLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"FINLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"FINLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FINLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FINLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FINLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FINLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FINLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FINLY_REDIS_ADDR"`
	Password     string        `envconfig:"FINLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"FINLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FINLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FINLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FINLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FINLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FINLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FINLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FINLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FINLY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FINLY_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FINLY_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"FINLY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FINLY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"FINLY_PUBSUB_DOMAIN_TOPIC" default:"finly-domain-events"`
	DomainSubscription string `envconfig:"FINLY_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
	PushTopic          string `envconfig:"FINLY_PUBSUB_PUSH_TOPIC" default:"finly-push-deliveries"`
}

// NotifierConfig tunes the in-app notification delivery pipeline.
type NotifierConfig struct {
	PopupDuration    time.Duration `envconfig:"FINLY_NOTIFIER_POPUP_DURATION" default:"5s"`
	FetchLimit       int           `envconfig:"FINLY_NOTIFIER_FETCH_LIMIT" default:"50"`
	SelectionDelay   time.Duration `envconfig:"FINLY_NOTIFIER_SELECTION_DELAY" default:"2s"`
	DisplayDelay     time.Duration `envconfig:"FINLY_NOTIFIER_DISPLAY_DELAY" default:"1s"`
	SessionTTL       time.Duration `envconfig:"FINLY_NOTIFIER_SESSION_TTL" default:"12h"`
	RetentionDays    int           `envconfig:"FINLY_NOTIFIER_RETENTION_DAYS" default:"30"`
	IdempotencyTTL   time.Duration `envconfig:"FINLY_NOTIFIER_IDEMPOTENCY_TTL" default:"720h"`
	PushIcon         string        `envconfig:"FINLY_NOTIFIER_PUSH_ICON" default:"/icons/icon-192.png"`
	PushBadge        string        `envconfig:"FINLY_NOTIFIER_PUSH_BADGE" default:"/icons/badge-72.png"`
	BudgetAlertRatio float64       `envconfig:"FINLY_NOTIFIER_BUDGET_ALERT_RATIO" default:"0.8"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"FINLY_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"FINLY_CRON_LOCK_TTL" default:"30m"`
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
