package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// gRPC Server
	GRPCPort string
	APIToken string

	// Database
	DBDriver       string
	DBConnStr      string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	SQLiteDBPath   string
	DBMaxOpenConns int

	// Ledger
	EnvelopeDeletePolicy string
	SeedEnvelopes        string

	// Runtime
	Environment     string
	LogLevel        string
	ShutdownTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "3000"),

		GRPCPort: getEnv("GRPC_PORT", "8080"),
		APIToken: getEnv("API_TOKEN", "dev-token"),

		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBConnStr:      getEnv("DB_CONN_STR", ""),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "personal_budget"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/budget.db"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),

		EnvelopeDeletePolicy: getEnv("ENVELOPE_DELETE_POLICY", "restrict"),
		SeedEnvelopes:        getEnv("SEED_ENVELOPES", ""),

		Environment:     getEnv("APP_ENV", "production"),
		LogLevel:        getEnv("LOG_LEVEL", ""),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	return cfg
}

// PostgresConnString returns DB_CONN_STR, or builds one from the individual DB_* variables
func (c *Config) PostgresConnString() string {
	if c.DBConnStr != "" {
		return c.DBConnStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// IsDevelopment reports whether the process runs on a developer machine
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate ports
	for _, p := range []struct{ name, value string }{
		{"port", c.Port},
		{"gRPC port", c.GRPCPort},
	} {
		if port, err := strconv.Atoi(p.value); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a number", p.name, p.value))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", p.name, port))
		}
	}

	if c.APIToken == "" {
		errors = append(errors, "API token cannot be empty")
	}

	// Validate database driver
	switch c.DBDriver {
	case "postgres":
		if c.DBConnStr == "" && (c.DBHost == "" || c.DBName == "") {
			errors = append(errors, "either DB_CONN_STR or DB_HOST and DB_NAME must be set for the postgres driver")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using the sqlite driver")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid database driver '%s': must be one of [postgres sqlite]", c.DBDriver))
	}

	if c.DBMaxOpenConns < 1 {
		errors = append(errors, fmt.Sprintf("invalid max open connections %d: must be at least 1", c.DBMaxOpenConns))
	}

	// Validate delete policy
	if c.EnvelopeDeletePolicy != "restrict" && c.EnvelopeDeletePolicy != "cascade" {
		errors = append(errors, fmt.Sprintf("invalid envelope delete policy '%s': must be one of [restrict cascade]", c.EnvelopeDeletePolicy))
	}

	// Validate environment
	switch c.Environment {
	case "production", "staging", "development", "local":
	default:
		errors = append(errors, fmt.Sprintf("invalid environment '%s': must be one of [production staging development local]", c.Environment))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
