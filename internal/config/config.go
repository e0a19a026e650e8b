package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Storage backends selectable with STORAGE_DRIVER.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the process configuration, read from the environment.
type Config struct {
	HTTPAddr string

	StorageDriver string
	SQLitePath    string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string

	DefaultSpeed float64

	// PasswordHash is a bcrypt hash. Auth is off when it is empty.
	PasswordHash string
	JWTSecret    string

	// CORSOrigins lists the origins allowed to call the API. Empty allows any.
	CORSOrigins []string

	LogFile  string
	LogLevel string
}

// AuthEnabled reports whether /api and /ws require a token.
func (c Config) AuthEnabled() bool {
	return c.PasswordHash != ""
}

// Load reads .env (if present) and then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("Config: no .env file found, relying on env vars")
	}

	cfg := Config{
		HTTPAddr: getEnv("HTTP_ADDR", "0.0.0.0:8080"),

		StorageDriver: getEnv("STORAGE_DRIVER", StorageSQLite),
		SQLitePath:    getEnv("SQLITE_PATH", "./data/routes.db"),

		DBDriver:   getEnv("DB_DRIVER", "pgx"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "tracker"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimeZone: getEnv("DB_TIMEZONE", "UTC"),

		DefaultSpeed: getEnvFloat("DEFAULT_SPEED_KMH", 5),

		PasswordHash: getEnv("ACCESS_PASSWORD_HASH", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		CORSOrigins:  getEnvList("CORS_ORIGINS"),

		LogFile:  getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	if cfg.AuthEnabled() && cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		logrus.Warn("Config: JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	return cfg
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logrus.WithError(err).Fatal("Config: cannot generate JWT secret")
	}
	return hex.EncodeToString(b)
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("Config: not a number, using default")
		return defaultValue
	}
	return f
}

// getEnvList splits a comma separated variable, dropping blank entries.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
