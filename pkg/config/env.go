package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "SPACERENT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "SPACERENT_APP_ENV"
	EnvPort                   = "SPACERENT_APP_PORT"
	EnvDBDSN                  = "SPACERENT_DB_DSN"
	EnvDBHost                 = "SPACERENT_DB_HOST"
	EnvDBUser                 = "SPACERENT_DB_USER"
	EnvDBName                 = "SPACERENT_DB_NAME"
	EnvRedisURL               = "SPACERENT_REDIS_URL"
	EnvJWTSecret              = "SPACERENT_JWT_SECRET"
	EnvJWTIssuer              = "SPACERENT_JWT_ISSUER"
	EnvOpenPixAppID           = "SPACERENT_OPENPIX_APP_ID"
	EnvCommissionDefaultType  = "SPACERENT_COMMISSION_DEFAULT_TYPE"
	EnvCommissionDefaultValue = "SPACERENT_COMMISSION_DEFAULT_VALUE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
