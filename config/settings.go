package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load env from .env
	godotenv.Load()
}

const (
	defaultAPIBaseURL   = "http://localhost:5000/api"
	defaultPhoneRegion  = "BO"
	defaultCurrency     = "Bs"
	defaultAPITimeout   = 30
	defaultCacheMinutes = 5
)

// APIBaseURL is the root of the external REST API every screen reads from.
//
// Set via env:
// - API_BASE_URL=https://carniceria.example.com/api
func APIBaseURL() string {
	v := strings.TrimSpace(os.Getenv("API_BASE_URL"))
	if v == "" {
		return defaultAPIBaseURL
	}
	return strings.TrimRight(v, "/")
}

func APITimeout() time.Duration {
	return time.Duration(intFromEnv("API_TIMEOUT_SECONDS", defaultAPITimeout)) * time.Second
}

// PhoneRegion is the default region used to parse party phone numbers without a country prefix.
func PhoneRegion() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("PHONE_REGION")))
	if v == "" {
		return defaultPhoneRegion
	}
	return v
}

// CurrencyLabel is printed after monetary values in exports ("35.00 Bs").
func CurrencyLabel() string {
	v := strings.TrimSpace(os.Getenv("CURRENCY_LABEL"))
	if v == "" {
		return defaultCurrency
	}
	return v
}

func CacheLifespan() time.Duration {
	return time.Duration(intFromEnv("CACHE_LIFESPAN_MINUTES", defaultCacheMinutes)) * time.Minute
}

// ExportBucket enables archiving of generated reports when set.
func ExportBucket() string {
	return strings.TrimSpace(os.Getenv("EXPORT_BUCKET"))
}

func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// backoff returns the retry sleep for the given attempt, capped at 30s.
func backoff(attempt int) time.Duration {
	sleep := time.Second * time.Duration(1<<min(attempt, 5))
	if sleep > 30*time.Second {
		sleep = 30 * time.Second
	}
	return sleep
}
