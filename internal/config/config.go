// Package config loads proxy configuration from the environment, the TOML
// config file and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment and file.
// Priority: Env vars → config.toml → defaults
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8002")
	ServerPort string

	// AppSecret is the shared bearer secret every /v1 caller must present
	AppSecret string

	// LogLevel is one of debug, info, warn, error
	LogLevel string

	// OwnedBy is reported as owned_by in the model list
	OwnedBy string

	// EnableRequestLog persists request logs and daily usage to SQLite
	EnableRequestLog bool

	// DBPath is the SQLite database location
	DBPath string

	// RateLimit is requests per minute per client IP (0 = unlimited)
	RateLimit int

	// Backend describes the upstream WebSocket endpoint and handshake
	Backend Backend

	// Models maps caller-facing names to backend model names
	Models []ModelAlias
}

// Backend configures the WebSocket chat backend.
type Backend struct {
	URL              string
	Origin           string
	UserAgent        string
	AcceptLanguage   string
	AcceptEncoding   string
	Language         string
	SpaceName        string
	PingInterval     time.Duration
	PingTimeout      time.Duration
	HandshakeTimeout time.Duration
}

// Backend defaults mirror what the vecmul web client sends.
const (
	DefaultBackendURL       = "wss://api.vecmul.com/ws"
	DefaultBackendOrigin    = "https://www.vecmul.com"
	DefaultUserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	DefaultAcceptLanguage   = "zh-CN,zh;q=0.9"
	DefaultAcceptEncoding   = "gzip, deflate, br, zstd"
	DefaultLanguage         = "zh-CN"
	DefaultSpaceName        = "Free Space"
	DefaultPingInterval     = 1 * time.Second
	DefaultPingTimeout      = 3 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
)

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() (*Config, error) {
	fileConfig, err := LoadFile()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigPath(), err)
	}
	fb := fileConfig.Backend

	cfg := &Config{
		ServerPort:       getEnvOrFile("SERVER_PORT", fileConfig.ServerPort, ":8002"),
		AppSecret:        getEnvOrFile("APP_SECRET", fileConfig.AppSecret, ""),
		LogLevel:         getEnvOrFile("LOG_LEVEL", fileConfig.LogLevel, "info"),
		OwnedBy:          getEnvOrFile("OWNED_BY", fileConfig.OwnedBy, "openai"),
		EnableRequestLog: getEnvBoolOrFile("ENABLE_REQUEST_LOG", fileConfig.EnableRequestLog, true),
		DBPath:           getEnvOrFile("DB_PATH", fileConfig.DBPath, DBPath()),
		RateLimit:        getEnvIntOrFile("RATE_LIMIT", fileConfig.RateLimit, 0),
		Backend: Backend{
			URL:              getEnvOrFile("BACKEND_URL", fb.URL, DefaultBackendURL),
			Origin:           getEnvOrFile("BACKEND_ORIGIN", fb.Origin, DefaultBackendOrigin),
			UserAgent:        getEnvOrFile("BACKEND_USER_AGENT", fb.UserAgent, DefaultUserAgent),
			AcceptLanguage:   getEnvOrFile("BACKEND_ACCEPT_LANGUAGE", fb.AcceptLanguage, DefaultAcceptLanguage),
			AcceptEncoding:   getEnvOrFile("BACKEND_ACCEPT_ENCODING", fb.AcceptEncoding, DefaultAcceptEncoding),
			Language:         getEnvOrFile("BACKEND_LANGUAGE", fb.Language, DefaultLanguage),
			SpaceName:        getEnvOrFile("BACKEND_SPACE_NAME", fb.SpaceName, DefaultSpaceName),
			PingInterval:     getEnvDurationOrFile("BACKEND_PING_INTERVAL", fb.PingInterval, DefaultPingInterval),
			PingTimeout:      getEnvDurationOrFile("BACKEND_PING_TIMEOUT", fb.PingTimeout, DefaultPingTimeout),
			HandshakeTimeout: getEnvDurationOrFile("BACKEND_HANDSHAKE_TIMEOUT", fb.HandshakeTimeout, DefaultHandshakeTimeout),
		},
		Models: MergeModels(DefaultModels(), fileConfig.Models),
	}

	return cfg, nil
}

// Validate reports configuration that would make the proxy unusable.
func (c *Config) Validate() error {
	if c.AppSecret == "" {
		return fmt.Errorf("APP_SECRET is not set (environment, .env or %s)", ConfigPath())
	}
	if !strings.HasPrefix(c.Backend.URL, "ws://") && !strings.HasPrefix(c.Backend.URL, "wss://") {
		return fmt.Errorf("backend url %q must use ws:// or wss://", c.Backend.URL)
	}
	if c.Backend.PingInterval <= 0 || c.Backend.PingTimeout <= 0 {
		return fmt.Errorf("backend ping interval and timeout must be positive")
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("no model aliases configured")
	}
	return nil
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvBoolOrFile returns env bool, file bool, or default (in priority order)
func getEnvBoolOrFile(key string, fileValue *bool, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

func getEnvIntOrFile(key string, fileValue *int, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getEnvDurationOrFile parses Go duration strings ("1s", "500ms"); unparsable values fall through.
func getEnvDurationOrFile(key, fileValue string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	if fileValue != "" {
		if d, err := time.ParseDuration(fileValue); err == nil {
			return d
		}
	}
	return defaultValue
}
