package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// Brute-force protection thresholds
	MaxAttemptsPerMinute           int
	MaxAttemptsPerHour             int
	MaxAttemptsPerDay              int
	BlockDurationMinutes           int
	ExtendedBlockDurationHours     int
	MaxFailuresBeforeExtendedBlock int

	// Cache TTLs in minutes. Default covers volatile per-user data,
	// long covers slow-moving reference data.
	CacheDefaultTTLMinutes int
	CacheLongTTLMinutes    int

	MidtransServerKey string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "learnspace"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		MaxAttemptsPerMinute:           getEnvInt("SECURITY_MAX_ATTEMPTS_PER_MINUTE", 5),
		MaxAttemptsPerHour:             getEnvInt("SECURITY_MAX_ATTEMPTS_PER_HOUR", 10),
		MaxAttemptsPerDay:              getEnvInt("SECURITY_MAX_ATTEMPTS_PER_DAY", 50),
		BlockDurationMinutes:           getEnvInt("SECURITY_BLOCK_DURATION_MINUTES", 15),
		ExtendedBlockDurationHours:     getEnvInt("SECURITY_EXTENDED_BLOCK_HOURS", 24),
		MaxFailuresBeforeExtendedBlock: getEnvInt("SECURITY_EXTENDED_BLOCK_FAILURES", 20),

		CacheDefaultTTLMinutes: getEnvInt("CACHE_DEFAULT_TTL_MINUTES", 5),
		CacheLongTTLMinutes:    getEnvInt("CACHE_LONG_TTL_MINUTES", 15),

		MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
