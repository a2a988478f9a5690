// Package tasks implements scheduled tasks for the assistant, including task
// definitions, dependencies, and registration.
package tasks

import (
	"log/slog"

	"healthcopilot/internal/config"
	"healthcopilot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
