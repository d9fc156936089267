package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Backend     BackendConfig
	Pricing     PricingConfig
	Session     SessionConfig
	Auth        AuthConfig
}

type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite file path
}

// BackendConfig is used to call the storefront REST backend
type BackendConfig struct {
	BaseURL string        // BACKEND_URL, e.g. http://backend:4000/api/v1
	Token   string        // BACKEND_TOKEN: service credential used when the caller has none
	Timeout time.Duration // BACKEND_TIMEOUT
}

// PricingConfig is the tax and shipping policy applied to every cart
type PricingConfig struct {
	TaxPercent            decimal.Decimal
	ShippingFlatFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal // free shipping when subtotal reaches this; <= 0 disables it
}

type SessionConfig struct {
	CouponDebounce time.Duration
	PageLimit      int
}

// AuthConfig holds the bearer token verification keys. At least one of JWTSecret and
// JWTPublicKey must be set; tokens are never accepted unverified.
type AuthConfig struct {
	JWTSecret       string // AUTH_JWT_SECRET: HMAC key for HS256/384/512 tokens
	JWTPublicKey    string // AUTH_JWT_PUBLIC_KEY: PEM RSA or ECDSA key of an external auth provider
	AdminAPIKeyHash string // ADMIN_API_KEY_HASH: bcrypt hash of the back-office key
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(strings.TrimSpace(getEnvOrViper("DB_DRIVER", "postgres"))),
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
			Path:     getEnvOrViper("DB_PATH", "storefront.db"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimSpace(getEnvOrViper("BACKEND_URL", "")),
			Token:   strings.TrimSpace(getEnvOrViper("BACKEND_TOKEN", "")),
		},
		Auth: AuthConfig{
			JWTSecret:       strings.TrimSpace(getEnvOrViper("AUTH_JWT_SECRET", "")),
			JWTPublicKey:    strings.TrimSpace(strings.ReplaceAll(getEnvOrViper("AUTH_JWT_PUBLIC_KEY", ""), `\n`, "\n")),
			AdminAPIKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		},
	}

	var err error
	if cfg.Backend.Timeout, err = durationValue("BACKEND_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Pricing.TaxPercent, err = decimalValue("TAX_PERCENT", "18"); err != nil {
		return nil, err
	}
	if cfg.Pricing.ShippingFlatFee, err = decimalValue("SHIPPING_FLAT_FEE", "200"); err != nil {
		return nil, err
	}
	if cfg.Pricing.FreeShippingThreshold, err = decimalValue("FREE_SHIPPING_THRESHOLD", "1000"); err != nil {
		return nil, err
	}
	if cfg.Session.CouponDebounce, err = durationValue("COUPON_DEBOUNCE", "1s"); err != nil {
		return nil, err
	}
	if cfg.Session.PageLimit, err = strconv.Atoi(getEnvOrViper("PAGE_LIMIT", "10")); err != nil || cfg.Session.PageLimit <= 0 {
		return nil, fmt.Errorf("PAGE_LIMIT must be a positive integer")
	}

	// Validate required fields
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	if cfg.Auth.JWTSecret == "" && cfg.Auth.JWTPublicKey == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET or AUTH_JWT_PUBLIC_KEY is required")
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Pricing.TaxPercent.IsNegative() || cfg.Pricing.ShippingFlatFee.IsNegative() {
		return nil, fmt.Errorf("TAX_PERCENT and SHIPPING_FLAT_FEE must not be negative")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func decimalValue(key, defaultValue string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(getEnvOrViper(key, defaultValue)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return d, nil
}

func durationValue(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(getEnvOrViper(key, defaultValue)))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration like 1s", key)
	}
	return d, nil
}
