package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type envConfig struct {
	APP_PORT      string
	LOG_FILE_PATH string
	LOG_LEVEL     string

	DB_HOST              string
	DB_PORT              string
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_MAX_OPEN_CONNS    int
	DB_MAX_IDLE_CONNS    int
	DB_CONN_MAX_LIFETIME time.Duration

	GCP_PROJECT_ID string
	ELASTIC_URL    string

	SOURCE_RETRIES       int
	SOURCE_RETRY_BACKOFF time.Duration

	REPORTS_FILE string
	DATE_LAYOUT  string
}

// DefaultEnvConfig holds the configuration read by LoadEnvConfig.
var DefaultEnvConfig envConfig

// LoadEnvConfig reads .env (when present) and the process environment into
// DefaultEnvConfig. Process variables win over .env entries.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := envConfig{
		APP_PORT:       getEnv("APP_PORT", "8080"),
		LOG_FILE_PATH:  getEnv("LOG_FILE_PATH", ""),
		LOG_LEVEL:      getEnv("LOG_LEVEL", "info"),
		DB_HOST:        getEnv("DB_HOST", ""),
		DB_PORT:        getEnv("DB_PORT", "5432"),
		DB_USER:        getEnv("DB_USER", "postgres"),
		DB_PASSWORD:    getEnv("DB_PASSWORD", ""),
		DB_NAME:        getEnv("DB_NAME", "postgres"),
		DB_SSL_MODE:    getEnv("DB_SSL_MODE", "disable"),
		GCP_PROJECT_ID: getEnv("GCP_PROJECT_ID", ""),
		ELASTIC_URL:    getEnv("ELASTIC_URL", ""),
		REPORTS_FILE:   getEnv("REPORTS_FILE", "reports.yaml"),
		DATE_LAYOUT:    getEnv("DATE_LAYOUT", "01/02/2006"),
	}

	var err error
	if cfg.DB_MAX_OPEN_CONNS, err = getEnvInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return err
	}
	if cfg.DB_MAX_IDLE_CONNS, err = getEnvInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return err
	}
	if cfg.DB_CONN_MAX_LIFETIME, err = getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return err
	}
	if cfg.SOURCE_RETRIES, err = getEnvInt("SOURCE_RETRIES", 2); err != nil {
		return err
	}
	if cfg.SOURCE_RETRY_BACKOFF, err = getEnvDuration("SOURCE_RETRY_BACKOFF", 200*time.Millisecond); err != nil {
		return err
	}

	DefaultEnvConfig = cfg
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
