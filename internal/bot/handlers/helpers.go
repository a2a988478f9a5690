package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

const (
	fileDownloadTimeout = 30 * time.Second
	defaultAITimeout    = 2 * time.Minute
	sendMessageTimeout  = 10 * time.Second
	dbSaveTimeout       = 5 * time.Second

	maxDownloadBytes = 10 * 1024 * 1024
	maxTitleLen      = 48
)

// AITimeout bounds generation and transcription calls with the configured
// AI timeout, falling back to a fixed default when none is set.
func AITimeout(deps HandlerDeps) time.Duration {
	if deps.Config != nil && deps.Config.AI.Timeout > 0 {
		return deps.Config.AI.Timeout
	}
	return defaultAITimeout
}

// UsernameFor derives the store username for a Telegram sender. The Telegram
// handle is preferred; accounts without one fall back to the numeric ID.
func UsernameFor(from *models.User) string {
	if from.Username != "" {
		return from.Username
	}
	return "tg:" + strconv.FormatInt(from.ID, 10)
}

// EnsureUser provisions a user row for the sender if one does not exist yet.
// The Telegram surface authenticates via Telegram itself, so the stored
// credential is an opaque generated secret, never used for login here.
func EnsureUser(ctx context.Context, deps HandlerDeps, from *models.User) (string, error) {
	username := UsernameFor(from)

	dbCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	defer cancel()

	// Duplicate usernames report false, which is the common case here.
	if _, err := deps.Store.CreateUser(dbCtx, username, uuid.NewString()); err != nil {
		return "", fmt.Errorf("failed to provision user %s: %w", username, err)
	}
	return username, nil
}

// CurrentSession returns the user's most recent session, creating one titled
// after the question when none exists.
func CurrentSession(ctx context.Context, deps HandlerDeps, username, question string) (string, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	defer cancel()

	sessions, err := deps.Store.ListSessions(dbCtx, username)
	if err != nil {
		return "", err
	}
	if len(sessions) > 0 {
		return sessions[0].SessionID, nil
	}

	return deps.Store.CreateSession(dbCtx, username, SessionTitle(question))
}

// SessionTitle derives a short session title from the opening question.
func SessionTitle(question string) string {
	title := strings.Join(strings.Fields(question), " ")
	if title == "" {
		return "New conversation"
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}
	return title
}

// DownloadFile retrieves a Telegram file's data and detects its MIME type.
func DownloadFile(ctx context.Context, b *bot.Bot, token, fileID string) (data []byte, mimeType string, err error) {
	if token == "" || fileID == "" {
		return nil, "", fmt.Errorf("token and fileID are required")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, fileDownloadTimeout)
	defer cancel()

	fileObj, err := b.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, "", fmt.Errorf("empty file path returned from Telegram")
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("received empty file data")
	}

	return data, http.DetectContentType(data), nil
}

// SendReply sends a text reply with a bounded timeout, logging failures.
func SendReply(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID int64, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	if _, err := b.SendMessage(sendCtx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}
