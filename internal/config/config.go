package config

import (
	"os"
	"strconv"
)

type Config struct {
	// APP
	AppEnv string
	Port   string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPass      string
	DBName      string

	JWTSecret string

	// Key for the reversible encryption of stored Jira passwords.
	// Falls back to JWTSecret so a minimal deployment needs one secret.
	FieldEncryptionKey string

	// Admin login
	AdminUsername string
	AdminPassword string

	// Jira client
	JiraTimeoutSeconds int
	JiraSearchPageSize int
	JiraRateLimit      float64
	JiraRateBurst      int
}

func Load() (*Config, error) {
	cfg := &Config{
		// App
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8002"),

		// DB
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPass:      getEnv("DB_PASS", "postgres"),
		DBName:      getEnv("DB_NAME", "poker_jira_db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "secret123"),

		// Admin login
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "poker-admin-2026"),

		// Jira client settings
		JiraTimeoutSeconds: getEnvInt("JIRA_TIMEOUT_SECONDS", 30),
		JiraSearchPageSize: getEnvInt("JIRA_SEARCH_PAGE_SIZE", 50),
		JiraRateLimit:      getEnvFloat("JIRA_RATE_LIMIT", 10),
		JiraRateBurst:      getEnvInt("JIRA_RATE_BURST", 5),
	}

	cfg.FieldEncryptionKey = getEnv("FIELD_ENCRYPTION_KEY", cfg.JWTSecret)

	return cfg, nil
}

// getEnv returns environment variable or default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns int from env or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat returns float from env or default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
