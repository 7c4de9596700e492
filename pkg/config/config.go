package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "MINSHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Data     DataConfig
	JWT      JWTConfig
	Password PasswordConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MINSHOP_APP_ENV" default:"dev"`
	Port         string `envconfig:"MINSHOP_APP_PORT" default:"3003"`
	LogLevel     string `envconfig:"MINSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MINSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DataConfig locates the flat-file collection directory.
type DataConfig struct {
	Dir string `envconfig:"MINSHOP_DATA_DIR" default:"data"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MINSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MINSHOP_JWT_ISSUER" default:"minshop"`
	ExpirationMinutes int    `envconfig:"MINSHOP_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// Expiration returns the access token TTL configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MINSHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MINSHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MINSHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MINSHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MINSHOP_ARGON_KEY_LEN" default:"32"`
}

type CheckoutConfig struct {
	ExpressShippingFee int           `envconfig:"MINSHOP_EXPRESS_SHIPPING_FEE" default:"20"`
	IdempotencyTTL     time.Duration `envconfig:"MINSHOP_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MINSHOP_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:3003"`
}
