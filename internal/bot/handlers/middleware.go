package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// EnsureRegistered creates a middleware that provisions a user row for the
// message sender before the wrapped handler runs. Commands that read or write
// per-user data rely on this so foreign keys always resolve.
func EnsureRegistered(deps HandlerDeps) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, b, update)
				return
			}

			if _, err := EnsureUser(ctx, deps, update.Message.From); err != nil {
				chatID := update.Message.Chat.ID
				log := deps.Logger.With("middleware", "EnsureRegistered")
				log.ErrorContext(ctx, "Failed to provision user", "error", err, "chat_id", chatID)
				SendReply(ctx, b, deps, chatID, deps.Config.Messages.GeneralError)
				return
			}

			next(ctx, b, update)
		}
	}
}
