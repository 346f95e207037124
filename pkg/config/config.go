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
	FeatureFlags FeatureFlagsConfig
	Workflow     WorkflowConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.SQLitePath == "" {
			return nil, fmt.Errorf("%s is required when %s is set", EnvSQLitePath, EnvUseSQLite)
		}
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SYNLAWN_APP_ENV" required:"true"`
	Port         string `envconfig:"SYNLAWN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SYNLAWN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SYNLAWN_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string      `envconfig:"SYNLAWN_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ReadTimeout        time.Duration `envconfig:"SYNLAWN_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout       time.Duration `envconfig:"SYNLAWN_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout    time.Duration `envconfig:"SYNLAWN_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"SYNLAWN_DB_DSN"`
	SQLitePath string `envconfig:"SYNLAWN_SQLITE_PATH"`

	LegacyHost     string `envconfig:"SYNLAWN_DB_HOST"`
	LegacyPort     int    `envconfig:"SYNLAWN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SYNLAWN_DB_USER"`
	LegacyPassword string `envconfig:"SYNLAWN_DB_PASSWORD"`
	LegacyName     string `envconfig:"SYNLAWN_DB_NAME"`
	LegacySSLMode  string `envconfig:"SYNLAWN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SYNLAWN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SYNLAWN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SYNLAWN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SYNLAWN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SYNLAWN_REDIS_URL"`
	Address      string        `envconfig:"SYNLAWN_REDIS_ADDR"`
	Password     string        `envconfig:"SYNLAWN_REDIS_PASSWORD"`
	DB           int           `envconfig:"SYNLAWN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SYNLAWN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SYNLAWN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SYNLAWN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SYNLAWN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SYNLAWN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SYNLAWN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SYNLAWN_AUTO_MIGRATE" default:"false"`
}

// WorkflowConfig bounds the lifetime of in-memory reservation workflows and
// the drafts they persist.
type WorkflowConfig struct {
	IdleTTL       time.Duration `envconfig:"SYNLAWN_WORKFLOW_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"SYNLAWN_WORKFLOW_SWEEP_INTERVAL" default:"1m"`
	DraftTTL      time.Duration `envconfig:"SYNLAWN_WORKFLOW_DRAFT_TTL" default:"72h"`
	RemoteTimeout time.Duration `envconfig:"SYNLAWN_WORKFLOW_REMOTE_TIMEOUT" default:"15s"`
}

// OutboxConfig drives the outbox publisher, which relays queued events to
// Redis streams.
type OutboxConfig struct {
	InventoryStream string        `envconfig:"SYNLAWN_OUTBOX_INVENTORY_STREAM" default:"synlawn:events:inventory"`
	QuoteStream     string        `envconfig:"SYNLAWN_OUTBOX_QUOTE_STREAM" default:"synlawn:events:quotes"`
	BatchSize       int           `envconfig:"SYNLAWN_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS  int           `envconfig:"SYNLAWN_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts     int           `envconfig:"SYNLAWN_OUTBOX_MAX_ATTEMPTS" default:"10"`
	StreamMaxLen    int64         `envconfig:"SYNLAWN_OUTBOX_STREAM_MAXLEN" default:"100000"`
	DedupeTTL       time.Duration `envconfig:"SYNLAWN_OUTBOX_DEDUPE_TTL" default:"24h"`
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
