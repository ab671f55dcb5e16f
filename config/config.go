package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	FrontendURL string
	// Geocoding provider
	GeocoderBaseURL        string
	GeocoderUserAgent      string
	GeocoderTimeoutSeconds int
	// Shortlist compute
	GeoBudgetPerCompute int
	ShortlistLimit      int
	// Redis (optional; geocode cache + rate limiting fall back to memory)
	RedisURL      string
	RedisPassword string
	// Rate Limiting
	ComputeRateLimit         int
	ComputeRateWindowSeconds int
}

func LoadConfig() (*Config, error) {
	// Only effective locally; ignored in production when the file is absent.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Geocoding provider: descriptive User-Agent is required by the
		// Nominatim usage policy.
		GeocoderBaseURL:        strings.TrimRight(getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"), "/"),
		GeocoderUserAgent:      getEnv("GEOCODER_USER_AGENT", "Marketplace-Shortlist/1.0 (ops@marketplace.example)"),
		GeocoderTimeoutSeconds: getEnvInt("GEOCODER_TIMEOUT_SECONDS", 8),
		// One ranking call may geocode at most this many unknown cities.
		GeoBudgetPerCompute: getEnvInt("GEO_BUDGET_PER_COMPUTE", 3),
		ShortlistLimit:      getEnvInt("SHORTLIST_LIMIT", 10),
		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting
		ComputeRateLimit:         getEnvInt("COMPUTE_RATE_LIMIT", 30),
		ComputeRateWindowSeconds: getEnvInt("COMPUTE_RATE_WINDOW_SECONDS", 60),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Geocode cache and rate limiting will be in-memory only.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
