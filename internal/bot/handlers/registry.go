package handlers

import (
	"github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its routing metadata and
// middleware. It encapsulates all information needed to register a command.
type RegisteredHandler struct {
	HandlerType bot.HandlerType
	Pattern     string
	Handler     bot.HandlerFunc
	Middleware  []bot.Middleware
	MatchType   bot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot
// commands. The default message handler is registered separately as the bot's
// fallback handler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
	}

	registered := []bot.Middleware{EnsureRegistered(deps)}

	handlers["/new"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "new",
		Handler:     NewSessionHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
		Middleware:  registered,
	}
	handlers["/history"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "history",
		Handler:     NewHistoryHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
		Middleware:  registered,
	}
	handlers["/bp"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "bp",
		Handler:     NewBloodPressureHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
		Middleware:  registered,
	}
	handlers["/sugar"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "sugar",
		Handler:     NewSugarHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
		Middleware:  registered,
	}
	handlers["/trends"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "trends",
		Handler:     NewTrendsHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
		Middleware:  registered,
	}

	return handlers
}
