package config

import (
	"fmt"     // For error formatting
	"net/url" // For AMQP URL validation
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For joining validation errors
	"time"    // For sweep interval parsing

	"github.com/joho/godotenv"   // For loading .env files
	"github.com/sirupsen/logrus" // For logger setup
)

// Config holds the application configuration
type Config struct {
	AppPort      string        // Application port
	DBDriver     string        // Database driver: mysql or postgres
	DBDSN        string        // Full DSN, overrides the DB_* parts when set
	DBUser       string        // Database user
	DBPassword   string        // Database password
	DBHost       string        // Database host
	DBPort       string        // Database port
	DBName       string        // Database name
	JWTSecret    string        // JWT secret key
	RedisAddr    string        // Redis server address
	RedisPass    string        // Redis password
	RedisDB      int           // Redis database number
	AMQPURL      string        // RabbitMQ URL, empty disables publishing
	AMQPExchange string        // RabbitMQ exchange for notification events
	IsProd       bool          // Is production environment
	CookieSecure bool          // Mark the session cookie Secure
	LogLevel     string        // logrus level name
	LogFormat    string        // text or json
	SweepEvery   time.Duration // Challenge expiry sweep interval
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:      getEnv("APP_PORT", "8080"),
		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBDSN:        os.Getenv("DB_DSN"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBHost:       getEnv("DB_HOST", "127.0.0.1"),
		DBPort:       os.Getenv("DB_PORT"),
		DBName:       getEnv("DB_NAME", "finance_tracker"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		RedisAddr:    getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:    os.Getenv("REDIS_PASS"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finance_tracker.notifications"),
		IsProd:       os.Getenv("IS_PROD") == "true",
		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		SweepEvery:   getEnvDuration("CHALLENGE_SWEEP_INTERVAL", time.Hour),
	}
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.AppPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid APP_PORT '%s': must be a number between 1 and 65535", c.AppPort))
	}
	if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER '%s': must be mysql or postgres", c.DBDriver))
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL '%s'", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid LOG_FORMAT '%s': must be text or json", c.LogFormat))
	}
	if c.SweepEvery < time.Second {
		problems = append(problems, fmt.Sprintf("invalid CHALLENGE_SWEEP_INTERVAL %v: must be at least 1s", c.SweepEvery))
	}
	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL scheme '%s': must be amqp or amqps", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP_EXCHANGE cannot be empty when AMQP_URL is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// DSN builds the driver specific data source name
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "postgres":
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	}
}

// SetupLogger applies the configured format and level to the standard logrus logger
func (c *Config) SetupLogger() {
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
