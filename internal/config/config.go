package config

import (
	"os"      // For environment variables
	"strconv" // For string conversion
	"time"    // For timeout durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort       string        // Application port
	DBUser        string        // Database user
	DBPassword    string        // Database password
	DBHost        string        // Database host
	DBPort        string        // Database port
	DBName        string        // Database name
	RedisAddr     string        // Redis server address
	RedisPass     string        // Redis password
	RedisDB       int           // Redis database number
	SessionSecret string        // Secret key signing session cookies
	QuoteBaseURL  string        // Base URL of the quote lookup service
	QuoteTimeout  time.Duration // Timeout for one quote lookup
	StartingCash  float64       // Cash seeded into new accounts
	MinCashOp     float64       // Minimum deposit/withdrawal amount
	IsProd        bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:       getenv("APP_PORT", "8080"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        getenv("DB_HOST", "127.0.0.1"),
		DBPort:        getenv("DB_PORT", "3306"),
		DBName:        os.Getenv("DB_NAME"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		RedisDB:       redisDB,
		SessionSecret: os.Getenv("SESSION_SECRET"),
		QuoteBaseURL:  getenv("QUOTE_BASE_URL", "https://finance.cs50.io"),
		QuoteTimeout:  time.Duration(getenvInt("QUOTE_TIMEOUT_SECONDS", 10)) * time.Second,
		StartingCash:  getenvFloat("STARTING_CASH", 10000.00),
		MinCashOp:     getenvFloat("MIN_CASH_OP", 100.00),
		IsProd:        os.Getenv("IS_PROD") == "true",
	}
}

// getenv returns the value of the environment variable or a default
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
