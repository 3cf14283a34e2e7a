package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "pulsecheck"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PULSECHECK_DB_DSN"
	EnvDBHost = "PULSECHECK_DB_HOST"
	EnvDBUser = "PULSECHECK_DB_USER"
	EnvDBName = "PULSECHECK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	Pipeline PipelineConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	BigQuery BigQueryConfig
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
	Env          string `envconfig:"PULSECHECK_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"PULSECHECK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PULSECHECK_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"PULSECHECK_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PULSECHECK_SERVICE_KIND" default:"pipeline-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"PULSECHECK_DB_DSN"`
	Driver string `envconfig:"PULSECHECK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PULSECHECK_DB_HOST"`
	LegacyPort     int    `envconfig:"PULSECHECK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PULSECHECK_DB_USER"`
	LegacyPassword string `envconfig:"PULSECHECK_DB_PASSWORD"`
	LegacyName     string `envconfig:"PULSECHECK_DB_NAME"`
	LegacySSLMode  string `envconfig:"PULSECHECK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PULSECHECK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PULSECHECK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PULSECHECK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PULSECHECK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PULSECHECK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PULSECHECK_REDIS_ADDR"`
	Password     string        `envconfig:"PULSECHECK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PULSECHECK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PULSECHECK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PULSECHECK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PULSECHECK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PULSECHECK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PULSECHECK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PipelineConfig tunes the normalization/detection pipeline.
type PipelineConfig struct {
	DataMode          string        `envconfig:"PULSECHECK_PIPELINE_DATA_MODE" default:"live"`
	BatchSize         int           `envconfig:"PULSECHECK_PIPELINE_BATCH_SIZE" default:"250"`
	RunInterval       time.Duration `envconfig:"PULSECHECK_PIPELINE_RUN_INTERVAL" default:"1h"`
	BaselineRetention float64       `envconfig:"PULSECHECK_PIPELINE_BASELINE_RETENTION" default:"0.25"`
	MarginRate        float64       `envconfig:"PULSECHECK_PIPELINE_MARGIN_RATE" default:"0.30"`
	SnapshotSource    string        `envconfig:"PULSECHECK_PIPELINE_SNAPSHOT_SOURCE" default:"staging"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PULSECHECK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PULSECHECK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PULSECHECK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OpportunitiesTopic string `envconfig:"PULSECHECK_PUBSUB_OPPORTUNITIES_TOPIC" default:"pc-opportunity-events"`
}

type BigQueryConfig struct {
	Dataset         string `envconfig:"PULSECHECK_BIGQUERY_DATASET" default:"pulsecheck"`
	DailyFactsTable string `envconfig:"PULSECHECK_BIGQUERY_DAILY_FACTS_TABLE" default:"daily_facts"`
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
