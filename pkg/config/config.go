package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	WooCommerce  WooCommerceConfig
	Airwallex    AirwallexConfig
	Checkout     CheckoutConfig
	Catalog      CatalogConfig
	RateLimit    RateLimitConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string   `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
	CartTTL      time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

// WooCommerceConfig holds the commerce backend credentials. Values are
// validated per request so the server still boots without them.
type WooCommerceConfig struct {
	BaseURL         string        `envconfig:"WC_BASE_URL"`
	ConsumerKey     string        `envconfig:"WC_CONSUMER_KEY"`
	ConsumerSecret  string        `envconfig:"WC_CONSUMER_SECRET"`
	Timeout         time.Duration `envconfig:"STOREFRONT_WC_TIMEOUT" default:"5s"`
	ProductsPerPage int           `envconfig:"STOREFRONT_WC_PRODUCTS_PER_PAGE" default:"12"`
}

type AirwallexConfig struct {
	Env             string        `envconfig:"AIRWALLEX_ENV" default:"demo"`
	ClientID        string        `envconfig:"AIRWALLEX_CLIENT_ID"`
	APIKey          string        `envconfig:"AIRWALLEX_API_KEY"`
	Timeout         time.Duration `envconfig:"STOREFRONT_AIRWALLEX_TIMEOUT" default:"5s"`
	DefaultCurrency string        `envconfig:"STOREFRONT_AIRWALLEX_CURRENCY" default:"USD"`
}

// Environment returns the normalized Airwallex environment (demo/prod).
func (a AirwallexConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(a.Env))
	if env == AirwallexEnvProd {
		return AirwallexEnvProd
	}
	return AirwallexEnvDemo
}

// CheckoutConfig carries the placeholder shipping and tax figures shown at checkout.
type CheckoutConfig struct {
	ShippingFlat    string `envconfig:"STOREFRONT_CHECKOUT_SHIPPING" default:"150"`
	TaxRate         string `envconfig:"STOREFRONT_CHECKOUT_TAX_RATE" default:"0.08"`
	DefaultIncoterm string `envconfig:"STOREFRONT_CHECKOUT_INCOTERM" default:"FOB"`
}

// Shipping parses the flat shipping placeholder.
func (c CheckoutConfig) Shipping() (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFlat))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", EnvCheckoutShipping, err)
	}
	return value, nil
}

// Tax parses the tax rate placeholder.
func (c CheckoutConfig) Tax() (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(c.TaxRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", EnvCheckoutTaxRate, err)
	}
	return value, nil
}

type CatalogConfig struct {
	EnrichConcurrency int `envconfig:"STOREFRONT_CATALOG_ENRICH_CONCURRENCY" default:"6"`
	LowCountThreshold int `envconfig:"STOREFRONT_CATALOG_LOW_COUNT_THRESHOLD" default:"3"`
}

type RateLimitConfig struct {
	RFQWindow      time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_RFQ_WINDOW" default:"10m"`
	RFQLimit       int           `envconfig:"STOREFRONT_RATE_LIMIT_RFQ_LIMIT" default:"5"`
	CheckoutWindow time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutLimit  int           `envconfig:"STOREFRONT_RATE_LIMIT_CHECKOUT_LIMIT" default:"10"`
}

// PubSubConfig is optional; RFQ notifications are skipped when ProjectID is empty.
type PubSubConfig struct {
	ProjectID string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
	RFQTopic  string `envconfig:"STOREFRONT_PUBSUB_RFQ_TOPIC" default:"storefront-rfq-events"`
}

// Enabled reports whether Pub/Sub notifications are configured.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ProjectID) != "" && strings.TrimSpace(p.RFQTopic) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
