package config

// EnvPrefix is what envconfig prepends to struct field lookups.
const EnvPrefix = "famly"

const (
	AppEnvDev     = "dev"
	AppEnvStaging = "staging"
	AppEnvProd    = "prod"
)

// DefaultInviteCodeLength is used when no FAMLY_INVITE_CODE_LENGTH override is set.
const DefaultInviteCodeLength = 8

const (
	EnvDBDSN  = "FAMLY_DB_DSN"
	EnvDBHost = "FAMLY_DB_HOST"
	EnvDBUser = "FAMLY_DB_USER"
	EnvDBName = "FAMLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
