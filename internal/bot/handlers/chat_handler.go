package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"healthcopilot/internal/database"
	"healthcopilot/internal/pipeline"
)

// NewChatHandler returns the default handler: it feeds free-text questions
// (with optional report context, scan image, or voice note) through the chat
// pipeline and persists both sides of the exchange.
func NewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return chatHandler{deps}.Handle
}

type chatHandler struct {
	deps HandlerDeps
}

func (h chatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "chat")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := msg.Chat.ID

	question := msg.Text
	if question == "" {
		question = msg.Caption
	}

	// Replying to an earlier message treats that message's text as pasted
	// report context for the grounding prompt.
	var pasted string
	if msg.ReplyToMessage != nil {
		pasted = msg.ReplyToMessage.Text
		if pasted == "" {
			pasted = msg.ReplyToMessage.Caption
		}
	}

	// A voice note becomes the question via the speech-to-text collaborator.
	if msg.Voice != nil && strings.TrimSpace(question) == "" {
		audio, mimeType, err := DownloadFile(ctx, b, deps.Config.Telegram.Token, msg.Voice.FileID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to download voice note", "error", err, "chat_id", chatID)
			SendReply(ctx, b, deps, chatID, deps.Config.Messages.GeneralError)
			return
		}

		transcribeCtx, cancel := context.WithTimeout(ctx, AITimeout(deps))
		transcript, err := deps.Pipeline.Transcribe(transcribeCtx, audio, mimeType)
		cancel()
		if err != nil {
			log.ErrorContext(ctx, "Transcription failed", "error", err, "chat_id", chatID)
			SendReply(ctx, b, deps, chatID, deps.Config.Messages.GeneralError)
			return
		}
		question = transcript
	}

	var imageData []byte
	var imageMIME, imageRef string
	if len(msg.Photo) > 0 {
		// Telegram orders photo sizes ascending; take the largest.
		photo := msg.Photo[len(msg.Photo)-1]
		data, mimeType, err := DownloadFile(ctx, b, deps.Config.Telegram.Token, photo.FileID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to download photo", "error", err, "chat_id", chatID)
			SendReply(ctx, b, deps, chatID, deps.Config.Messages.GeneralError)
			return
		}
		imageData = data
		imageMIME = mimeType
		imageRef = photo.FileID
	}

	if strings.TrimSpace(question) == "" {
		SendReply(ctx, b, deps, chatID, deps.Config.Messages.EmptyPrompt)
		return
	}

	username, err := EnsureUser(ctx, deps, msg.From)
	if err != nil {
		log.ErrorContext(ctx, "Failed to provision user", "error", err, "chat_id", chatID)
		SendReply(ctx, b, deps, chatID, deps.Config.Messages.GeneralError)
		return
	}

	sessionID, err := CurrentSession(ctx, deps, username, question)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve session", "error", err, "username", username)
		SendReply(ctx, b, deps, chatID, deps.Config.Messages.GeneralError)
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	err = deps.Store.AppendMessage(saveCtx, sessionID, database.RoleUser, question, imageRef)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to save user message", "error", err, "session_id", sessionID)
	}

	aiCtx, cancel := context.WithTimeout(ctx, AITimeout(deps))
	result, err := deps.Pipeline.Chat(aiCtx, &pipeline.ChatRequest{
		Question:      question,
		PastedContext: pasted,
		ImageData:     imageData,
		ImageMIME:     imageMIME,
	})
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Chat pipeline failed", "error", err, "session_id", sessionID)
		SendReply(ctx, b, deps, chatID, deps.Config.Messages.GeneralError)
		return
	}

	if !result.Refused {
		saveCtx, cancel = context.WithTimeout(ctx, dbSaveTimeout)
		err = deps.Store.AppendMessage(saveCtx, sessionID, database.RoleAssistant, result.Answer, "")
		cancel()
		if err != nil {
			log.ErrorContext(ctx, "Failed to save assistant message", "error", err, "session_id", sessionID)
		}
	}

	SendReply(ctx, b, deps, chatID, result.Answer)
}
