package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBPort = "STOREFRONT_DB_PORT"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret              = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer              = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins             = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "STOREFRONT_REFRESH_TOKEN_TTL_MINUTES"
	EnvSessionAuthKey         = "STOREFRONT_SESSION_AUTH_KEY"
	EnvSessionEncryptionKey   = "STOREFRONT_SESSION_ENCRYPTION_KEY"
	EnvCORSOrigins            = "STOREFRONT_CORS_ORIGINS"
	EnvFeatureUseSQLite       = "STOREFRONT_USE_SQLITE"
	EnvFeatureAutoMigrate     = "STOREFRONT_AUTO_MIGRATE"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
