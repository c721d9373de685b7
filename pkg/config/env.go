package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names
// so the prefix only matters for fields without an envconfig tag.
const EnvPrefix = "SKILLWAVE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names shared with tests and tooling.
const (
	EnvAppEnv                 = "SKILLWAVE_APP_ENV"
	EnvPort                   = "SKILLWAVE_APP_PORT"
	EnvDBDSN                  = "SKILLWAVE_DB_DSN"
	EnvDBHost                 = "SKILLWAVE_DB_HOST"
	EnvDBUser                 = "SKILLWAVE_DB_USER"
	EnvDBName                 = "SKILLWAVE_DB_NAME"
	EnvRedisURL               = "SKILLWAVE_REDIS_URL"
	EnvJWTSecret              = "SKILLWAVE_JWT_SECRET"
	EnvJWTIssuer              = "SKILLWAVE_JWT_ISSUER"
	EnvJWTExpMins             = "SKILLWAVE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SKILLWAVE_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
