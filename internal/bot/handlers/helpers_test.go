package handlers_test

import (
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"

	"healthcopilot/internal/bot/handlers"
	"healthcopilot/internal/config"
)

func TestAITimeout(t *testing.T) {
	t.Parallel()

	configured := handlers.HandlerDeps{
		Config: &config.Config{AI: config.AIConfig{Timeout: 45 * time.Second}},
	}
	assert.Equal(t, 45*time.Second, handlers.AITimeout(configured),
		"the configured AI timeout must bound model calls")

	zero := handlers.HandlerDeps{Config: &config.Config{}}
	assert.Equal(t, 2*time.Minute, handlers.AITimeout(zero))

	assert.Equal(t, 2*time.Minute, handlers.AITimeout(handlers.HandlerDeps{}))
}

func TestUsernameFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice", handlers.UsernameFor(&models.User{ID: 7, Username: "alice"}))
	assert.Equal(t, "tg:7", handlers.UsernameFor(&models.User{ID: 7}))
}

func TestSessionTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "New conversation", handlers.SessionTitle("   "))
	assert.Equal(t, "what does LDL mean?", handlers.SessionTitle("  what   does LDL mean?  "))

	long := handlers.SessionTitle("this question goes on and on well past any reasonable session title length")
	assert.LessOrEqual(t, len(long), 48)
	assert.True(t, len(long) > 3 && long[len(long)-3:] == "...")
}
