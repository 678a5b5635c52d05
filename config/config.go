package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds all application configuration. Values come from the
// environment (optionally seeded by a .env file) and may be overridden by
// a YAML file named in PROPERTYEDGE_CONFIG.
type Config struct {
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDB       string `yaml:"postgres_db"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
	StorageBackend   string `yaml:"storage_backend"`

	// PPDDatabaseURL points at the Price Paid comps database. Empty means
	// comps are not configured.
	PPDDatabaseURL string `yaml:"ppd_database_url"`

	HTTPAddr string `yaml:"http_addr"`

	FetchMode        string `yaml:"fetch_mode"`
	ChromeBin        string `yaml:"chrome_bin"`
	FetchTimeoutSec  int    `yaml:"fetch_timeout_sec"`
	MaxRetries       int    `yaml:"max_retries"`
	RetryBaseDelayMs int    `yaml:"retry_base_delay_ms"`
	MaxConcurrency   int    `yaml:"max_concurrency"`
	RateLimitMs      int    `yaml:"rate_limit_ms"`

	CompMonths   int `yaml:"comp_months"`
	CompLimit    int `yaml:"comp_limit"`
	HistoryLimit int `yaml:"history_limit"`

	LogLevel string `yaml:"log_level"`
}

// Load reads the .env file, the environment and the optional YAML overlay
// and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := fromEnv()
	if path := os.Getenv("PROPERTYEDGE_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			log.Printf("[config] Ignoring config file %s: %v", path, err)
		}
	}
	return cfg
}

func fromEnv() *Config {
	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "propertyedge"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "propertyedge"),
		PostgresDB:       getEnv("POSTGRES_DB", "propertyedge"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		StorageBackend:   getEnv("STORAGE_BACKEND", "postgres"),

		PPDDatabaseURL: getEnv("PPD_DATABASE_URL", ""),

		HTTPAddr: getEnv("HTTP_ADDR", ":5050"),

		FetchMode:        getEnv("FETCH_MODE", "http"),
		ChromeBin:        getEnv("CHROME_BIN", ""),
		FetchTimeoutSec:  getEnvInt("FETCH_TIMEOUT_SEC", 20),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelayMs: getEnvInt("RETRY_BASE_DELAY_MS", 1000),
		MaxConcurrency:   getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 2000),

		CompMonths:   getEnvInt("COMP_MONTHS", 18),
		CompLimit:    getEnvInt("COMP_LIMIT", 12),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 30),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// overlayFile applies the non-zero values of a YAML file on top of c.
func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}

	overlayString(&c.PostgresHost, file.PostgresHost)
	overlayString(&c.PostgresPort, file.PostgresPort)
	overlayString(&c.PostgresUser, file.PostgresUser)
	overlayString(&c.PostgresPassword, file.PostgresPassword)
	overlayString(&c.PostgresDB, file.PostgresDB)
	overlayString(&c.PostgresSSLMode, file.PostgresSSLMode)
	overlayString(&c.StorageBackend, file.StorageBackend)
	overlayString(&c.PPDDatabaseURL, file.PPDDatabaseURL)
	overlayString(&c.HTTPAddr, file.HTTPAddr)
	overlayString(&c.FetchMode, file.FetchMode)
	overlayString(&c.ChromeBin, file.ChromeBin)
	overlayString(&c.LogLevel, file.LogLevel)

	overlayInt(&c.FetchTimeoutSec, file.FetchTimeoutSec)
	overlayInt(&c.MaxRetries, file.MaxRetries)
	overlayInt(&c.RetryBaseDelayMs, file.RetryBaseDelayMs)
	overlayInt(&c.MaxConcurrency, file.MaxConcurrency)
	overlayInt(&c.RateLimitMs, file.RateLimitMs)
	overlayInt(&c.CompMonths, file.CompMonths)
	overlayInt(&c.CompLimit, file.CompLimit)
	overlayInt(&c.HistoryLimit, file.HistoryLimit)
	return nil
}

// DSN returns the PostgreSQL connection string for the analysis store.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// FetchTimeout returns the per-page fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// RetryBaseDelay returns the first back-off delay.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
