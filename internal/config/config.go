// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"calculator-widget/internal/calculator"
	"calculator-widget/internal/storage"
)

// Config is the service configuration.
type Config struct {
	Addr            string // CALC_ADDR
	HistoryCapacity int    // CALC_HISTORY_CAPACITY
	StoreKind       string // CALC_STORE: memory, file or sqlite
	StorePath       string // CALC_STORE_PATH
	Locale          string // CALC_LOCALE, BCP 47 tag
	LogLevel        string // CALC_LOG_LEVEL
	Telemetry       bool   // CALC_TELEMETRY: OTLP traces and metrics
	OTLPLogs        bool   // CALC_OTLP_LOGS
}

const defaultDataDir = "data"

// LoadDotEnv loads environment variables from the given files, or .env when
// none are given. Missing files are ignored and existing process
// environment variables are not overridden.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Addr:      getenv("CALC_ADDR", ":8080"),
		StoreKind: getenv("CALC_STORE", storage.KindFile),
		Locale:    getenv("CALC_LOCALE", "id"),
		LogLevel:  getenv("CALC_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.HistoryCapacity, err = getInt("CALC_HISTORY_CAPACITY", calculator.DefaultHistoryCapacity); err != nil {
		return Config{}, err
	}
	if cfg.HistoryCapacity <= 0 {
		return Config{}, fmt.Errorf("CALC_HISTORY_CAPACITY must be positive, got %d", cfg.HistoryCapacity)
	}
	if cfg.Telemetry, err = getBool("CALC_TELEMETRY", true); err != nil {
		return Config{}, err
	}
	if cfg.OTLPLogs, err = getBool("CALC_OTLP_LOGS", false); err != nil {
		return Config{}, err
	}

	switch cfg.StoreKind {
	case storage.KindMemory:
	case storage.KindFile:
		cfg.StorePath = getenv("CALC_STORE_PATH", defaultDataDir)
	case storage.KindSQLite:
		cfg.StorePath = getenv("CALC_STORE_PATH", filepath.Join(defaultDataDir, "calculator.db"))
	default:
		return Config{}, fmt.Errorf("CALC_STORE: unknown store %q", cfg.StoreKind)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
