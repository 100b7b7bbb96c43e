package config

// EnvPrefix namespaces the storefront environment variables.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	AirwallexEnvDemo = "demo"
	AirwallexEnvProd = "prod"
)

const (
	EnvAppEnv = "STOREFRONT_APP_ENV"
	EnvPort   = "STOREFRONT_APP_PORT"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvWCBaseURL        = "WC_BASE_URL"
	EnvWCConsumerKey    = "WC_CONSUMER_KEY"
	EnvWCConsumerSecret = "WC_CONSUMER_SECRET"

	EnvAirwallexEnv      = "AIRWALLEX_ENV"
	EnvAirwallexClientID = "AIRWALLEX_CLIENT_ID"
	EnvAirwallexAPIKey   = "AIRWALLEX_API_KEY"

	EnvCheckoutShipping = "STOREFRONT_CHECKOUT_SHIPPING"
	EnvCheckoutTaxRate  = "STOREFRONT_CHECKOUT_TAX_RATE"

	EnvGCPProjectID = "STOREFRONT_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
