package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "FINLY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "FINLY_APP_ENV"
	EnvPort     = "FINLY_APP_PORT"
	EnvDBDSN    = "FINLY_DB_DSN"
	EnvDBHost   = "FINLY_DB_HOST"
	EnvDBUser   = "FINLY_DB_USER"
	EnvDBName   = "FINLY_DB_NAME"
	EnvRedisURL = "FINLY_REDIS_URL"

	EnvJWTSecret  = "FINLY_JWT_SECRET"
	EnvJWTIssuer  = "FINLY_JWT_ISSUER"
	EnvJWTExpMins = "FINLY_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID    = "FINLY_GCP_PROJECT_ID"
	EnvPubSubDomainSub = "FINLY_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
