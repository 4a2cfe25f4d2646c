package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Ownership policies for section and task endpoints.
const (
	PolicyStrict = "strict"
	PolicyOpen   = "open"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string
	JWTSecret  string
	AppEnv     string
	LogLevel   string

	AutoMigrate     bool
	OwnershipPolicy string

	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	OpenAITimeout   time.Duration
	SummaryFallback bool

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SummaryCacheTTL time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "taskflow_user"),
		DBPassword: getEnv("DB_PASSWORD", "taskflow_pass"),
		DBName:     getEnv("DB_NAME", "taskflow_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		ServerPort: getEnv("SERVER_PORT", "8080"),
		JWTSecret:  getEnv("JWT_SECRET", "supersecretkey"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		AutoMigrate:     getEnvBool("AUTO_MIGRATE", true),
		OwnershipPolicy: getPolicy("OWNERSHIP_POLICY", PolicyStrict),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAITimeout:   getEnvDuration("OPENAI_TIMEOUT", 15*time.Second),
		SummaryFallback: getEnvBool("SUMMARY_FALLBACK", true),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		SummaryCacheTTL: getEnvDuration("SUMMARY_CACHE_TTL", 10*time.Minute),
	}
}

// DSN returns the PostgreSQL connection string in key=value form.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSSLMode
}

// StrictOwnership reports whether section and task endpoints must verify
// that the caller owns the parent project.
func (c *Config) StrictOwnership() bool {
	return c.OwnershipPolicy != PolicyOpen
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("⚠️  Invalid boolean for %s=%q, using %t", key, raw, defaultVal)
		return defaultVal
	}
	return v
}

func getEnvInt(key string, defaultVal int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️  Invalid integer for %s=%q, using %d", key, raw, defaultVal)
		return defaultVal
	}
	return v
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("⚠️  Invalid duration for %s=%q, using %s", key, raw, defaultVal)
		return defaultVal
	}
	return v
}

func getPolicy(key, defaultVal string) string {
	switch v := getEnv(key, defaultVal); v {
	case PolicyStrict, PolicyOpen:
		return v
	default:
		log.Printf("⚠️  Unknown %s=%q, using %s", key, v, defaultVal)
		return defaultVal
	}
}
