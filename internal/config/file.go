package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ServerPort       string       `toml:"server_port"`
	AppSecret        string       `toml:"app_secret"`
	LogLevel         string       `toml:"log_level"`
	OwnedBy          string       `toml:"owned_by"`
	EnableRequestLog *bool        `toml:"enable_request_log"`
	DBPath           string       `toml:"db_path"`
	RateLimit        *int         `toml:"rate_limit"`
	Backend          FileBackend  `toml:"backend"`
	Models           []ModelAlias `toml:"models"`
}

// FileBackend is the [backend] table. Durations use Go syntax ("1s").
type FileBackend struct {
	URL              string `toml:"url"`
	Origin           string `toml:"origin"`
	UserAgent        string `toml:"user_agent"`
	AcceptLanguage   string `toml:"accept_language"`
	AcceptEncoding   string `toml:"accept_encoding"`
	Language         string `toml:"language"`
	SpaceName        string `toml:"space_name"`
	PingInterval     string `toml:"ping_interval"`
	PingTimeout      string `toml:"ping_timeout"`
	HandshakeTimeout string `toml:"handshake_timeout"`
}

// ConfigPath returns the path to the config file.
// VECWAY_CONFIG overrides the default ~/.vecway/config.toml.
func ConfigPath() string {
	if p := os.Getenv("VECWAY_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DataDir(), "config.toml")
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	cfg := &FileConfig{}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	// If config already exists, do nothing
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	defaultConfig := `# Vecway Configuration
# server_port = ":8002"
# app_secret = "change-me"          # prefer APP_SECRET in the environment or .env
# log_level = "info"
# owned_by = "openai"
# enable_request_log = true
# rate_limit = 0                     # requests per minute per client IP, 0 = unlimited

# [backend]
# url = "wss://api.vecmul.com/ws"
# origin = "https://www.vecmul.com"
# language = "zh-CN"
# ping_interval = "1s"
# ping_timeout = "3s"
# handshake_timeout = "10s"

# Extra model aliases (added to, or overriding, the built-in table)
# [[models]]
# slug = "gpt-4o-mini"
# model = "GPT-4o"
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
