package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MinKDFIterations is the floor applied to KDF_ITERATIONS.
const MinKDFIterations = 100000

type AppConfig struct {
	ListenAddr   string
	DatabasePath string
	LogLevel     string

	KDFIterations int

	InsightCacheTTL     time.Duration
	SessionTokenExpiry  time.Duration
	SessionSecret       []byte
	Incognito           bool
	MaxRequestBodyBytes int64
	AllowedOrigin       string
}

// LoadConfig reads the .env file when present and builds the configuration
// from the environment, falling back to defaults for anything unset.
func LoadConfig() *AppConfig {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	iterations := getEnvAsInt("KDF_ITERATIONS", 310000)
	if iterations < MinKDFIterations {
		log.Printf("WARNING: KDF_ITERATIONS=%d is below the minimum, using %d", iterations, MinKDFIterations)
		iterations = MinKDFIterations
	}

	sessionSecret := []byte(getEnv("SESSION_SECRET", ""))
	if len(sessionSecret) == 0 {
		sessionSecret = randomSecret()
		log.Println("SESSION_SECRET not set, generated a per-process secret. Session tokens will not survive a restart.")
	} else if len(sessionSecret) < 32 {
		log.Fatalf("FATAL: SESSION_SECRET must be at least 32 bytes long. Current length: %d", len(sessionSecret))
	}

	cfg := &AppConfig{
		ListenAddr:          getEnv("LISTEN_ADDR", "127.0.0.1:8787"),
		DatabasePath:        getEnv("DATABASE_PATH", "./moneymirror.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		KDFIterations:       iterations,
		InsightCacheTTL:     getEnvAsDuration("INSIGHT_CACHE_TTL", 15*time.Minute),
		SessionTokenExpiry:  getEnvAsDuration("SESSION_TOKEN_EXPIRY", 12*time.Hour),
		SessionSecret:       sessionSecret,
		Incognito:           getEnvAsBool("INCOGNITO", false),
		MaxRequestBodyBytes: int64(getEnvAsInt("MAX_REQUEST_BODY_BYTES", 1<<20)),
		AllowedOrigin:       getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	log.Printf("Configuration loaded: ListenAddr=%s, LogLevel=%s, DBPath=%s, KDFIterations=%d, Incognito=%t",
		cfg.ListenAddr, cfg.LogLevel, cfg.DatabasePath, cfg.KDFIterations, cfg.Incognito)
	return cfg
}

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("FATAL: could not generate session secret: %v", err)
	}
	return []byte(base64.RawURLEncoding.EncodeToString(b))
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
