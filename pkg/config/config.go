package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "procureflow"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	AI           AIConfig
	SMTP         SMTPConfig
	Poller       PollerConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PROCUREFLOW_APP_ENV" default:"dev"`
	Port         string `envconfig:"PROCUREFLOW_APP_PORT" default:"3001"`
	LogLevel     string `envconfig:"PROCUREFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROCUREFLOW_LOG_WARN_STACK" default:"false"`
	FrontendURL  string `envconfig:"PROCUREFLOW_FRONTEND_URL" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PROCUREFLOW_DB_DSN"`
	Driver string `envconfig:"PROCUREFLOW_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"PROCUREFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROCUREFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROCUREFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROCUREFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	// URL is optional; without it the inbound-email dedupe guard is disabled.
	URL          string        `envconfig:"PROCUREFLOW_REDIS_URL"`
	Address      string        `envconfig:"PROCUREFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"PROCUREFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROCUREFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROCUREFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROCUREFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROCUREFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROCUREFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROCUREFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`

	DedupeTTL time.Duration `envconfig:"PROCUREFLOW_WEBHOOK_DEDUPE_TTL" default:"24h"`
}

// Enabled reports whether a redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type AIConfig struct {
	APIKey  string        `envconfig:"PROCUREFLOW_GEMINI_API_KEY"`
	Model   string        `envconfig:"PROCUREFLOW_GEMINI_MODEL" default:"gemini-2.0-flash"`
	UseMock bool          `envconfig:"PROCUREFLOW_USE_MOCK_AI" default:"false"`
	Timeout time.Duration `envconfig:"PROCUREFLOW_AI_TIMEOUT" default:"60s"`
}

type SMTPConfig struct {
	Host     string        `envconfig:"PROCUREFLOW_SMTP_HOST" default:"smtp.ethereal.email"`
	Port     int           `envconfig:"PROCUREFLOW_SMTP_PORT" default:"587"`
	Username string        `envconfig:"PROCUREFLOW_SMTP_USERNAME"`
	Password string        `envconfig:"PROCUREFLOW_SMTP_PASSWORD"`
	From     string        `envconfig:"PROCUREFLOW_SMTP_FROM" default:"RFP System <rfp@procurement.com>"`
	Timeout  time.Duration `envconfig:"PROCUREFLOW_SMTP_TIMEOUT" default:"15s"`

	// TestMode marks the transport as an Ethereal-style capture inbox; sends
	// then report preview URLs instead of real deliveries.
	TestMode bool `envconfig:"PROCUREFLOW_SMTP_TEST_MODE" default:"true"`
}

type PollerConfig struct {
	BackendURL      string        `envconfig:"PROCUREFLOW_POLLER_BACKEND_URL" default:"http://localhost:3001"`
	CredentialsPath string        `envconfig:"PROCUREFLOW_POLLER_CREDENTIALS" default:"gmail/credentials.json"`
	TokenPath       string        `envconfig:"PROCUREFLOW_POLLER_TOKEN" default:"gmail/token.json"`
	Interval        time.Duration `envconfig:"PROCUREFLOW_POLLER_INTERVAL" default:"5m"`
	Query           string        `envconfig:"PROCUREFLOW_POLLER_QUERY" default:"is:unread"`
	MetricsAddr     string        `envconfig:"PROCUREFLOW_POLLER_METRICS_ADDR" default:":9402"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PROCUREFLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PROCUREFLOW_AUTO_MIGRATE" default:"false"`
}
