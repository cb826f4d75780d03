package configuration

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Environment variables that override credentials from the config file,
// so that tokens do not have to live on disk.
const (
	EnvVKToken      = "VKGPT_VK_TOKEN"
	EnvOpenaiAPIKey = "VKGPT_OPENAI_API_KEY"
)

var defaultConfig = Config{
	VKToken:        "VK_GROUP_TOKEN",
	OpenaiAPIKey:   "API_KEY",
	OpenaiAPIHost:  "https://api.aiguoguo199.com/v1",
	Model:          "gpt-4o-mini",
	DatabasePath:   "~/.config/vkgpt/vkgpt.db",
	RequestTimeout: 60,
	HistoryLimit:   20,
	MaxTokens:      1000,
	Temperature:    0.7,
	LoggingMode:    "dev",
}

// Config holds configuration for the vkgpt bot.
type Config struct {
	// Group access token of the VK community the bot serves.
	VKToken string `json:"vk_token"`
	// Credentials and host of the completion API.
	OpenaiAPIKey  string `json:"openai_api_key"`
	OpenaiAPIHost string `json:"openai_api_host"`
	// The model used for completions.
	Model string `json:"model"`
	// Path to the SQLite database holding chats and messages.
	DatabasePath string `json:"database_path"`
	// Timeout of a single completion request, in seconds.
	RequestTimeout int `json:"request_timeout"`
	// Number of recent messages sent as context.
	HistoryLimit int `json:"history_limit"`
	// Sampling parameters for completion requests.
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	// "dev" or "prod".
	LoggingMode string `json:"logging_mode"`
	// Optional USD prices per 1K tokens. When set, each request's cost is logged.
	InputPricePer1K  string `json:"input_price_per_1k,omitempty"`
	OutputPricePer1K string `json:"output_price_per_1k,omitempty"`
}

// Parse a configuration file, creating it with defaults if absent.
func Parse(path string) (*Config, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}

	if token := os.Getenv(EnvVKToken); token != "" {
		config.VKToken = token
	}
	if key := os.Getenv(EnvOpenaiAPIKey); key != "" {
		config.OpenaiAPIKey = key
	}

	expandedDatabasePath, err := ExpandPath(config.DatabasePath)
	if err != nil {
		return nil, errors.Wrap(err, "expanding database path")
	}
	config.DatabasePath = expandedDatabasePath
	if err := os.MkdirAll(filepath.Dir(config.DatabasePath), 0755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}
	return config, nil
}

// ExpandPath expands a leading "~" to the current user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "getting current user")
	}
	return filepath.Join(usr.HomeDir, strings.TrimPrefix(path, "~")), nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
