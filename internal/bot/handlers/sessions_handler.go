package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSessionHandler returns a handler for the /new command, which starts a
// fresh conversation so later messages no longer share the previous session.
func NewSessionHandler(deps HandlerDeps) bot.HandlerFunc {
	return sessionHandler{deps}.Handle
}

type sessionHandler struct {
	deps HandlerDeps
}

func (h sessionHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "new_session")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Session handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	username := UsernameFor(update.Message.From)

	title := commandArgs(update.Message.Text)

	saveCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	sessionID, err := h.deps.Store.CreateSession(saveCtx, username, SessionTitle(title))
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to create session", "error", err, "username", username)
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Started new session", "session_id", sessionID, "username", username)
	SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.NewSession)
}

// NewHistoryHandler returns a handler for the /history command.
func NewHistoryHandler(deps HandlerDeps) bot.HandlerFunc {
	return historyHandler{deps}.Handle
}

type historyHandler struct {
	deps HandlerDeps
}

func (h historyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "history")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "History handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	username := UsernameFor(update.Message.From)

	saveCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	sessions, err := h.deps.Store.ListSessions(saveCtx, username)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to list sessions", "error", err, "username", username)
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	if len(sessions) == 0 {
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.NoSessions)
		return
	}

	var sb strings.Builder
	sb.WriteString("Your recent conversations:\n")
	for _, s := range sessions {
		msgCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
		messages, err := h.deps.Store.ListMessages(msgCtx, s.SessionID)
		cancel()
		if err != nil {
			log.ErrorContext(ctx, "Failed to list session messages", "error", err, "session_id", s.SessionID)
			SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
			return
		}

		fmt.Fprintf(&sb, "• %s (%s, %d messages)\n",
			s.Title, s.CreatedAt.Local().Format("2006-01-02 15:04"), len(messages))
	}
	SendReply(ctx, b, h.deps, chatID, sb.String())
}

// commandArgs strips the leading /command token and returns the rest.
func commandArgs(text string) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(rest)
}
