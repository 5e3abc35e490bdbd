package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `json:"server"`
	Database    DatabaseConfig    `json:"database"`
	Security    SecurityConfig    `json:"security"`
	Logging     LoggingConfig     `json:"logging"`
	SmartThings SmartThingsConfig `json:"smartthings"`
	Tizen       TizenConfig       `json:"tizen"`
	Bot         BotConfig         `json:"bot"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `json:"path"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	// APIKey authenticates API callers. A value starting with $2 is
	// treated as a bcrypt hash; anything else is compared directly.
	APIKey string `json:"api_key"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Format string `json:"format"` // "json" or "text"
	Level  string `json:"level"`  // "debug", "info", "warn", "error"
}

// SmartThingsConfig contains SmartThings cloud API settings
type SmartThingsConfig struct {
	// Credentials is either a bare PAT string or a full credential
	// object; see smartthings.NormalizeCredentials for the two shapes.
	Credentials    json.RawMessage `json:"credentials"`
	BaseURL        string          `json:"base_url"`
	TokenURL       string          `json:"token_url"`
	TimeoutSeconds int             `json:"timeout_seconds"`
	MaxRetries     int             `json:"max_retries"`
}

// Configured reports whether SmartThings credentials were supplied
func (c SmartThingsConfig) Configured() bool {
	return len(c.Credentials) > 0
}

// TizenConfig contains local Tizen TV settings
type TizenConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	PSK  string `json:"psk"`
}

// Configured reports whether a local TV was supplied
func (c TizenConfig) Configured() bool {
	return c.Host != ""
}

// BotConfig contains Telegram remote-control bot settings
type BotConfig struct {
	Token string `json:"token"`
	// AllowedChatIDs limits who can press buttons; empty allows nobody.
	AllowedChatIDs []int64 `json:"allowed_chat_ids"`
	// DeviceID is the TV the bot controls.
	DeviceID string `json:"device_id"`
	// Backend selects the control path ("smartthings" or "tizen").
	Backend string `json:"backend"`
}

// Enabled reports whether the bot should be started
func (c BotConfig) Enabled() bool {
	return c.Token != ""
}

// IsChatAllowed reports whether a chat may use the bot. An empty
// allow-list rejects everyone.
func (c BotConfig) IsChatAllowed(chatID int64) bool {
	for _, id := range c.AllowedChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port", ErrInvalidConfig)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	}

	if c.Security.APIKey == "" {
		return fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	if !c.SmartThings.Configured() && !c.Tizen.Configured() {
		return fmt.Errorf("%w: at least one of smartthings or tizen must be configured", ErrInvalidConfig)
	}

	if c.Bot.Enabled() && c.Bot.DeviceID == "" && c.Bot.Backend != "tizen" {
		return fmt.Errorf("%w: bot device_id is required for the smartthings backend", ErrInvalidConfig)
	}

	return nil
}

// Load loads configuration from a JSON file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigFileNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromEnv loads configuration from environment variables
// This is useful for containerized deployments
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: getEnv("TVBRIDGE_HOST", "0.0.0.0"),
			Port: getEnvInt("TVBRIDGE_PORT", 8080),
		},
		Database: DatabaseConfig{
			Path: getEnv("TVBRIDGE_DB_PATH", "./tvbridge.db"),
		},
		Security: SecurityConfig{
			APIKey: getEnv("TVBRIDGE_API_KEY", ""),
		},
		Logging: LoggingConfig{
			Format: getEnv("TVBRIDGE_LOG_FORMAT", "json"),
			Level:  getEnv("TVBRIDGE_LOG_LEVEL", "info"),
		},
		SmartThings: SmartThingsConfig{
			BaseURL:        getEnv("TVBRIDGE_SMARTTHINGS_BASE_URL", ""),
			TokenURL:       getEnv("TVBRIDGE_SMARTTHINGS_TOKEN_URL", ""),
			TimeoutSeconds: getEnvInt("TVBRIDGE_SMARTTHINGS_TIMEOUT", 0),
			MaxRetries:     getEnvInt("TVBRIDGE_SMARTTHINGS_MAX_RETRIES", 0),
		},
		Tizen: TizenConfig{
			Host: getEnv("TVBRIDGE_TIZEN_HOST", ""),
			Port: getEnvInt("TVBRIDGE_TIZEN_PORT", 0),
			PSK:  getEnv("TVBRIDGE_TIZEN_PSK", ""),
		},
		Bot: BotConfig{
			Token:    getEnv("TVBRIDGE_BOT_TOKEN", ""),
			DeviceID: getEnv("TVBRIDGE_BOT_DEVICE_ID", ""),
			Backend:  getEnv("TVBRIDGE_BOT_BACKEND", "smartthings"),
		},
	}

	// The token arrives as a plain string in the environment; wrap it in
	// the JSON string shape the credential normalizer expects.
	if token := os.Getenv("TVBRIDGE_SMARTTHINGS_TOKEN"); token != "" {
		encoded, err := json.Marshal(token)
		if err != nil {
			return nil, fmt.Errorf("failed to encode token: %w", err)
		}
		config.SmartThings.Credentials = encoded
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		fmt.Sscanf(value, "%d", &intVal)
		return intVal
	}
	return defaultValue
}
