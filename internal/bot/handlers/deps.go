// Package handlers contains Telegram command and message handlers for the
// health-education assistant, along with their registration logic and
// middleware.
package handlers

import (
	"log/slog"

	"healthcopilot/internal/config"
	"healthcopilot/internal/database"
	"healthcopilot/internal/pipeline"
)

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Pipeline *pipeline.Orchestrator
}
