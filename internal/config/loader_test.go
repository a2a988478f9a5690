package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcopilot/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
ai:
  api_key: test-key
telegram:
  token: test-token
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "gemini", cfg.AI.Backend)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, float32(0.2), cfg.AI.Temperature)
	assert.Equal(t, int32(650), cfg.AI.MaxOutputTokens)
	assert.Equal(t, 2*time.Minute, cfg.AI.Timeout)
	assert.Equal(t, "healthcopilot.db", cfg.Database.Path)
	assert.Equal(t, "events_log.jsonl", cfg.Events.Path)

	task, ok := cfg.Scheduler.Tasks["sql_maintenance"]
	require.True(t, ok)
	assert.True(t, task.Enabled)
	assert.NotEmpty(t, task.Schedule)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
  json: false
ai:
  backend: openai
  api_key: test-key
  model: gpt-4o-mini
  temperature: 0.7
telegram:
  token: test-token
database:
  path: /tmp/assistant.db
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Logger.JSON)
	assert.Equal(t, "openai", cfg.AI.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, float32(0.7), cfg.AI.Temperature)
	assert.Equal(t, "/tmp/assistant.db", cfg.Database.Path)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "Missing API key",
			content: `
telegram:
  token: test-token
`,
		},
		{
			name: "Unknown backend",
			content: `
ai:
  backend: anthropic
  api_key: test-key
telegram:
  token: test-token
`,
		},
		{
			name: "Bad log level",
			content: `
logger:
  level: loud
ai:
  api_key: test-key
telegram:
  token: test-token
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}
