package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database drivers accepted by DATABASE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverDynamo = "dynamo"
	DriverMemory = "memory"
)

// DefaultJWTSecret is only acceptable in development.
const DefaultJWTSecret = "fallback-secret-change-in-production"

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DatabaseDriver string
	MongoURI       string
	MongoDatabase  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	SNSTopicARN    string // empty disables event publishing

	RedisURL string // empty disables the unread-count cache

	JWTSecret string
	JWTExpiry time.Duration

	Pagination Pagination

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Notifications string
}

// Pagination bounds for GET /notifications.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverMongo)),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "notifications"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
		},
		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),
		// REDIS_URL set to the empty string turns the cache off.
		RedisURL:  lookupEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpiry: getEnvDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
		Pagination: Pagination{
			DefaultLimit: getEnvInt("PAGINATION_DEFAULT_LIMIT", 20),
			MaxLimit:     getEnvInt("PAGINATION_MAX_LIMIT", 100),
		},
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverMongo, DriverDynamo, DriverMemory:
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.Pagination.MaxLimit < 1 {
		return fmt.Errorf("PAGINATION_MAX_LIMIT must be positive")
	}
	if c.Pagination.DefaultLimit < 1 || c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return fmt.Errorf("PAGINATION_DEFAULT_LIMIT must be between 1 and %d", c.Pagination.MaxLimit)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

// IsDevelopment reports whether APP_ENV is "development".
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func lookupEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// ParseDuration accepts Go durations ("12h", "30m") plus a day suffix ("7d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
