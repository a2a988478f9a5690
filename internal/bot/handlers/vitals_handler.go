package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"healthcopilot/internal/database"
	"healthcopilot/internal/vitals"
)

// NewBloodPressureHandler returns a handler for the /bp command:
// /bp <systolic> <diastolic> [note]
func NewBloodPressureHandler(deps HandlerDeps) bot.HandlerFunc {
	return bloodPressureHandler{deps}.Handle
}

type bloodPressureHandler struct {
	deps HandlerDeps
}

func (h bloodPressureHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "bp")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Blood pressure handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	username := UsernameFor(update.Message.From)

	fields := strings.Fields(commandArgs(update.Message.Text))
	if len(fields) < 2 {
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.VitalUsage)
		return
	}
	systolic, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.VitalUsage)
		return
	}
	diastolic, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.VitalUsage)
		return
	}
	note := strings.Join(fields[2:], " ")

	saveCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	err = h.deps.Store.AddVital(saveCtx, username, database.KindBloodPressure, systolic, &diastolic, note)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to save blood pressure reading", "error", err, "username", username)
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Saved blood pressure reading", "username", username, "systolic", systolic, "diastolic", diastolic)
	SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.VitalSaved)
}

// NewSugarHandler returns a handler for the /sugar command:
// /sugar <value> [note]
func NewSugarHandler(deps HandlerDeps) bot.HandlerFunc {
	return sugarHandler{deps}.Handle
}

type sugarHandler struct {
	deps HandlerDeps
}

func (h sugarHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "sugar")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Sugar handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	username := UsernameFor(update.Message.From)

	fields := strings.Fields(commandArgs(update.Message.Text))
	if len(fields) < 1 {
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.VitalUsage)
		return
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.VitalUsage)
		return
	}
	note := strings.Join(fields[1:], " ")

	saveCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	err = h.deps.Store.AddVital(saveCtx, username, database.KindSugar, value, nil, note)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to save sugar reading", "error", err, "username", username)
		SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Saved sugar reading", "username", username, "value", value)
	SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.VitalSaved)
}

// NewTrendsHandler returns a handler for the /trends command, which replies
// with rolling-window advisories for each vital kind the user has logged.
func NewTrendsHandler(deps HandlerDeps) bot.HandlerFunc {
	return trendsHandler{deps}.Handle
}

type trendsHandler struct {
	deps HandlerDeps
}

func (h trendsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "trends")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Trends handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	username := UsernameFor(update.Message.From)

	var sb strings.Builder
	for i, kind := range []struct {
		label string
		kind  string
	}{
		{label: "🩺 Blood pressure: ", kind: database.KindBloodPressure},
		{label: "🩸 Sugar: ", kind: database.KindSugar},
	} {
		dbCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
		history, err := h.deps.Store.ListVitals(dbCtx, username, kind.kind)
		cancel()
		if err != nil {
			log.ErrorContext(ctx, "Failed to list vitals", "error", err, "username", username, "kind", kind.kind)
			SendReply(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
			return
		}

		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(kind.label)
		sb.WriteString(vitals.Analyze(history, kind.kind))
	}
	SendReply(ctx, b, h.deps, chatID, sb.String())
}
