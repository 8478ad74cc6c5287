package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	// LookupMode is "range" or "exact", see domain.LookupMode.
	LookupMode string
	// StrictRates rejects negative or non-finite custom rates.
	StrictRates bool
	// RatesPath is an extra directory searched for rates.yml.
	RatesPath string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "taxrate"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LookupMode:  strings.ToLower(strings.TrimSpace(getenv("TAXRATE_LOOKUP_MODE", "range"))),
		StrictRates: getenvBool("TAXRATE_STRICT", false),
		RatesPath:   strings.TrimSpace(getenv("TAXRATE_CONFIG_PATH", "")),
	}
}

var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewRatesHolder,
	),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
