package config

// EnvPrefix is the envconfig prefix for all service settings.
const EnvPrefix = "autohaus"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "AUTOHAUS_DB_DSN"
	EnvDBHost = "AUTOHAUS_DB_HOST"
	EnvDBUser = "AUTOHAUS_DB_USER"
	EnvDBName = "AUTOHAUS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
