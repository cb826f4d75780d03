package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	config, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", config.Model)
	require.Equal(t, "https://api.aiguoguo199.com/v1", config.OpenaiAPIHost)
	require.Equal(t, 20, config.HistoryLimit)
	require.Equal(t, 1000, config.MaxTokens)
	require.InDelta(t, 0.7, config.Temperature, 0.001)

	// The default file must have been written.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestParseReadsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	config := &Config{
		VKToken:      "token",
		OpenaiAPIKey: "key",
		Model:        "gpt-4o",
		DatabasePath: filepath.Join(dir, "bot.db"),
		HistoryLimit: 5,
	}
	bytes, err := json.Marshal(config)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, bytes, 0644))

	parsed, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, "token", parsed.VKToken)
	require.Equal(t, "gpt-4o", parsed.Model)
	require.Equal(t, 5, parsed.HistoryLimit)
}

func TestParseEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(EnvVKToken, "env-vk-token")
	t.Setenv(EnvOpenaiAPIKey, "env-api-key")

	config, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, "env-vk-token", config.VKToken)
	require.Equal(t, "env-api-key", config.OpenaiAPIKey)
}
