package config

const (
	EnvPrefix = "SYNLAWN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "SYNLAWN_APP_ENV"
	EnvPort        = "SYNLAWN_APP_PORT"
	EnvDBDSN       = "SYNLAWN_DB_DSN"
	EnvDBHost      = "SYNLAWN_DB_HOST"
	EnvDBUser      = "SYNLAWN_DB_USER"
	EnvDBName      = "SYNLAWN_DB_NAME"
	EnvRedisURL    = "SYNLAWN_REDIS_URL"
	EnvUseSQLite   = "SYNLAWN_USE_SQLITE"
	EnvSQLitePath  = "SYNLAWN_SQLITE_PATH"
	EnvWorkflowTTL = "SYNLAWN_WORKFLOW_IDLE_TTL"
	EnvCORSOrigins = "SYNLAWN_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
