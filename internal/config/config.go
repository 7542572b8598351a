package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// Server Configuration:
// - HTTP_LISTEN_ADDR: Address the HTTP API listens on (default: :8793)
//
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default: https://api.openai.com/v1)
// - LLM_TIMEOUT: Request timeout in seconds (default: 30)
// - LLM_SITE_URL: Site URL for HTTP referer header (optional)
// - LLM_APP_NAME: Application name for X-Title header (optional)
//
// Pipeline Configuration:
// - CAPTION_QUIET_PERIOD_MS: Debounce window before a caption is final (default: 900)
// - SOURCE_DEDUP_TTL_MS: Window in which a repeated caption is dropped (default: 20000)
// - RESULT_CACHE_TTL_MS: Lifetime of cached LLM results (default: 45000)
// - RESULT_CACHE_MAX_ENTRIES: Cap on cached LLM results (default: 300)
// - HISTORY_SIZE: Translation history entries kept for the UI (default: 8)
// - SHARE_CHECK_INTERVAL_MS: Screen-share poll interval (default: 1500)
//
// Storage Configuration:
// - DB_PATH: SQLite database file for persisted preferences (default: ./data/captioncoach.db)
//
// Maintenance Configuration:
// - SWEEP_CRON_EXPR: Cron schedule for the result-cache sweep (default: every minute)

type Config struct {
	Server ServerConfig `json:"server"`

	LLM LLMConfig `json:"llm"`

	Pipeline PipelineConfig `json:"pipeline"`

	Storage StorageConfig `json:"storage"`

	Maintenance MaintenanceConfig `json:"maintenance"`
}

// ServerConfig holds the HTTP API configuration
type ServerConfig struct {
	ListenAddr string `json:"listen_addr"`
}

// LLMConfig holds the configuration for the LLM client
// Supports any OpenAI-compatible provider
type LLMConfig struct {
	APIKey  string `json:"api_key"`
	APIURL  string `json:"api_url"`
	Timeout int    `json:"timeout"`
	SiteURL string `json:"site_url"`
	AppName string `json:"app_name"`
}

// PipelineConfig holds the caption pipeline tunables
type PipelineConfig struct {
	QuietPeriod        time.Duration `json:"quiet_period"`
	SourceDedupTTL     time.Duration `json:"source_dedup_ttl"`
	ResultCacheTTL     time.Duration `json:"result_cache_ttl"`
	ResultCacheEntries int           `json:"result_cache_entries"`
	HistorySize        int           `json:"history_size"`
	ShareCheckInterval time.Duration `json:"share_check_interval"`
}

// StorageConfig holds the preferences database location
type StorageConfig struct {
	DBPath string `json:"db_path"`
}

// MaintenanceConfig holds background maintenance schedules
type MaintenanceConfig struct {
	SweepCronExpr string `json:"sweep_cron_expr"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			ListenAddr: getEnvString("HTTP_LISTEN_ADDR", ":8793"),
		},
		LLM: LLMConfig{
			APIKey:  getEnvString("LLM_API_KEY", ""),
			APIURL:  getEnvString("LLM_API_URL", "https://api.openai.com/v1"),
			Timeout: getEnvInt("LLM_TIMEOUT", 30),
			SiteURL: getEnvString("LLM_SITE_URL", ""),
			AppName: getEnvString("LLM_APP_NAME", ""),
		},
		Pipeline: PipelineConfig{
			QuietPeriod:        getEnvMillis("CAPTION_QUIET_PERIOD_MS", 900),
			SourceDedupTTL:     getEnvMillis("SOURCE_DEDUP_TTL_MS", 20_000),
			ResultCacheTTL:     getEnvMillis("RESULT_CACHE_TTL_MS", 45_000),
			ResultCacheEntries: getEnvInt("RESULT_CACHE_MAX_ENTRIES", 300),
			HistorySize:        getEnvInt("HISTORY_SIZE", 8),
			ShareCheckInterval: getEnvMillis("SHARE_CHECK_INTERVAL_MS", 1500),
		},
		Storage: StorageConfig{
			DBPath: getEnvString("DB_PATH", "./data/captioncoach.db"),
		},
		Maintenance: MaintenanceConfig{
			SweepCronExpr: getEnvString("SWEEP_CRON_EXPR", "* * * * *"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.LLM.Timeout < 1 {
		return fmt.Errorf("LLM_TIMEOUT must be greater than 0")
	}
	if c.Pipeline.QuietPeriod <= 0 {
		return fmt.Errorf("CAPTION_QUIET_PERIOD_MS must be greater than 0")
	}
	if c.Pipeline.ResultCacheEntries < 1 {
		return fmt.Errorf("RESULT_CACHE_MAX_ENTRIES must be greater than 0")
	}
	if c.Pipeline.HistorySize < 1 {
		return fmt.Errorf("HISTORY_SIZE must be greater than 0")
	}
	if _, err := cron.ParseStandard(c.Maintenance.SweepCronExpr); err != nil {
		return fmt.Errorf("invalid SWEEP_CRON_EXPR: %w", err)
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvMillis gets a millisecond duration from environment variables with default
func getEnvMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Millisecond
}
