package config

// EnvPrefix is passed to envconfig; every field carries an explicit OCL_ key.
const EnvPrefix = "OCL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "OCL_APP_ENV"
	EnvPort        = "OCL_APP_PORT"
	EnvDBDSN       = "OCL_DB_DSN"
	EnvDBHost      = "OCL_DB_HOST"
	EnvDBUser      = "OCL_DB_USER"
	EnvDBName      = "OCL_DB_NAME"
	EnvRedisURL    = "OCL_REDIS_URL"
	EnvJWTSecret   = "OCL_JWT_SECRET"
	EnvJWTIssuer   = "OCL_JWT_ISSUER"
	EnvJWTExpMins  = "OCL_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite   = "OCL_USE_SQLITE"
	EnvAutoMigrate = "OCL_AUTO_MIGRATE"
	EnvBillerState = "OCL_BILLER_STATE"
	EnvFuelRate    = "OCL_FUEL_SURCHARGE_RATE"
	EnvGSTRate     = "OCL_GST_RATE"
	EnvAWBCharge   = "OCL_AWB_CHARGE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
