package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration in priority order:
// 1. Default values
// 2. The YAML file at path (optional; defaults apply when missing)
// 3. HC_* environment variables (e.g. HC_AI_API_KEY, HC_TELEGRAM_TOKEN)
//
// The resulting configuration is validated before being returned.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("HC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		// Missing config file is fine, defaults plus environment apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("database.path", "healthcopilot.db")
	v.SetDefault("events.path", "events_log.jsonl")

	// Empty defaults register the keys with viper so HC_* environment
	// variables bind to them during Unmarshal.
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("telegram.token", "")

	v.SetDefault("ai.backend", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.transcribe_model", "")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.max_output_tokens", 650)
	v.SetDefault("ai.timeout", 2*time.Minute)
	v.SetDefault("ai.max_retries", 2)
	v.SetDefault("ai.retry_delay_seconds", 5)

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
	})

	v.SetDefault("messages.welcome", "👋 Hi! I'm a health education assistant. Ask me about a report, a symptom, or what to discuss with your doctor. I don't diagnose and I don't give dosing advice.")
	v.SetDefault("messages.help", "Send me any health question, paste report text, or attach a scan image.\n/new <title> - start a new conversation\n/history - list your recent conversations\n/bp <systolic> <diastolic> [note] - log blood pressure\n/sugar <value> [note] - log blood sugar\n/trends - trend advisories for your logged vitals")
	v.SetDefault("messages.general_error", "❌ Something went wrong. Please try again later.")
	v.SetDefault("messages.empty_prompt", "ℹ️ Please include a question with your message.")
	v.SetDefault("messages.new_session", "🆕 Started a new conversation.")
	v.SetDefault("messages.no_sessions", "No conversations yet. Just send me a question to start one.")
	v.SetDefault("messages.vital_saved", "✅ Reading saved.")
	v.SetDefault("messages.vital_usage", "Usage: /bp <systolic> <diastolic> [note] or /sugar <value> [note]")
}
