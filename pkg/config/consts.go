package config

const (
	EnvPrefix = "UHARVEST"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv        = "UHARVEST_APP_ENV"
	EnvPort          = "UHARVEST_APP_PORT"
	EnvRedisURL      = "UHARVEST_REDIS_URL"
	EnvGCPProjectID  = "UHARVEST_GCP_PROJECT_ID"
	EnvDispatchTopic = "UHARVEST_PUBSUB_DISPATCH_TOPIC"

	EnvDBDSN  = "UHARVEST_DB_DSN"
	EnvDBHost = "UHARVEST_DB_HOST"
	EnvDBUser = "UHARVEST_DB_USER"
	EnvDBName = "UHARVEST_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
