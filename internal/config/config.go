// Package config provides configuration loading, validation, and management
// for the healthcopilot application. Values come from a YAML file and
// HC_-prefixed environment variables, with defaults for optional fields.
package config

import (
	"time"
)

// Config defines the application configuration for all components: logging,
// persistence, telemetry, AI integration, the Telegram surface, and the
// scheduler. Storage and log sink locations are injected here at construction
// time; nothing in the application reads paths from process-wide state.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Events    EventsConfig    `mapstructure:"events"`
	AI        AIConfig        `mapstructure:"ai"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// EventsConfig holds the pipeline telemetry sink settings.
type EventsConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AIConfig holds settings for the generation and transcription backends.
type AIConfig struct {
	Backend           string        `mapstructure:"backend"             validate:"oneof=gemini openai"`
	APIKey            string        `mapstructure:"api_key"             validate:"required"`
	BaseURL           string        `mapstructure:"base_url"            validate:"omitempty,url"`
	Model             string        `mapstructure:"model"               validate:"required"`
	TranscribeModel   string        `mapstructure:"transcribe_model"`
	Temperature       float32       `mapstructure:"temperature"         validate:"min=0,max=2"`
	MaxOutputTokens   int32         `mapstructure:"max_output_tokens"   validate:"min=1,max=8192"`
	Timeout           time.Duration `mapstructure:"timeout"             validate:"min=1s,max=10m"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
}

// TelegramConfig holds the bot token for the chat surface.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

// TaskConfig describes one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// MessagesConfig holds user-facing surface texts. The guardrail override text
// and the urgent banner are fixed policy strings and deliberately not
// configurable; these cover the conversational scaffolding around them.
type MessagesConfig struct {
	Welcome      string `mapstructure:"welcome"`
	Help         string `mapstructure:"help"`
	GeneralError string `mapstructure:"general_error"`
	EmptyPrompt  string `mapstructure:"empty_prompt"`
	NewSession   string `mapstructure:"new_session"`
	NoSessions   string `mapstructure:"no_sessions"`
	VitalSaved   string `mapstructure:"vital_saved"`
	VitalUsage   string `mapstructure:"vital_usage"`
}
