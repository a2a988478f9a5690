package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcopilot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(":memory:")
	require.NoError(t, err, "opening in-memory database")
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func TestCreateUser(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, created)

	// Taking the same username again is a normal outcome, not an error.
	created, err = store.CreateUser(ctx, "alice", "other-secret")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = store.CreateUser(ctx, "", "secret")
	assert.Error(t, err, "empty username must be rejected")
}

func TestVerifyUser(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "bob", "correct-horse")
	require.NoError(t, err)

	ok, err := store.VerifyUser(ctx, "bob", "correct-horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.VerifyUser(ctx, "bob", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.VerifyUser(ctx, "nobody", "whatever")
	require.NoError(t, err)
	assert.False(t, ok, "unknown user verifies false without error")
}

func TestSessions(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "carol", "pw")
	require.NoError(t, err)

	first, err := store.CreateSession(ctx, "carol", "Lab report questions")
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := store.CreateSession(ctx, "carol", "Blood pressure follow-up")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	sessions, err := store.ListSessions(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second, sessions[0].SessionID, "most recent session listed first")
	assert.Equal(t, "Blood pressure follow-up", sessions[0].Title)

	empty, err := store.ListSessions(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessages(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "dana", "pw")
	require.NoError(t, err)
	sessionID, err := store.CreateSession(ctx, "dana", "Scan questions")
	require.NoError(t, err)

	require.NoError(t, store.AppendMessage(ctx, sessionID, database.RoleUser, "what is this shadow?", "file-abc"))
	require.NoError(t, store.AppendMessage(ctx, sessionID, database.RoleAssistant, "here is what to ask your doctor", ""))
	require.NoError(t, store.AppendMessage(ctx, sessionID, database.RoleUser, "thanks", ""))

	messages, err := store.ListMessages(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, database.RoleUser, messages[0].Role)
	assert.Equal(t, "what is this shadow?", messages[0].Content)
	require.True(t, messages[0].ImageRef.Valid)
	assert.Equal(t, "file-abc", messages[0].ImageRef.String)

	assert.Equal(t, database.RoleAssistant, messages[1].Role)
	assert.False(t, messages[1].ImageRef.Valid)
	assert.Equal(t, "thanks", messages[2].Content)

	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt),
			"timestamps must be non-decreasing within a session")
	}

	err = store.AppendMessage(ctx, sessionID, "narrator", "not a valid role", "")
	assert.Error(t, err)
}

// Appending onto a session that already holds messages reads the previous
// timestamp to clamp against; that read must scan cleanly and never fail the
// append.
func TestAppendMessageOntoExistingSession(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "frank", "pw")
	require.NoError(t, err)
	sessionID, err := store.CreateSession(ctx, "frank", "Follow-up")
	require.NoError(t, err)

	require.NoError(t, store.AppendMessage(ctx, sessionID, database.RoleUser, "first", ""))
	require.NoError(t, store.AppendMessage(ctx, sessionID, database.RoleAssistant, "second", ""))
	require.NoError(t, store.AppendMessage(ctx, sessionID, database.RoleUser, "third", ""))

	messages, err := store.ListMessages(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{messages[0].Content, messages[1].Content, messages[2].Content})
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}

func TestVitals(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "erin", "pw")
	require.NoError(t, err)

	diastolic := 82.0
	require.NoError(t, store.AddVital(ctx, "erin", database.KindBloodPressure, 124, &diastolic, "morning"))
	require.NoError(t, store.AddVital(ctx, "erin", database.KindSugar, 101, nil, ""))

	bp, err := store.ListVitals(ctx, "erin", database.KindBloodPressure)
	require.NoError(t, err)
	require.Len(t, bp, 1)
	assert.Equal(t, 124.0, bp[0].ValuePrimary)
	require.True(t, bp[0].ValueSecondary.Valid)
	assert.Equal(t, 82.0, bp[0].ValueSecondary.Float64)
	require.True(t, bp[0].Note.Valid)
	assert.Equal(t, "morning", bp[0].Note.String)

	sugar, err := store.ListVitals(ctx, "erin", database.KindSugar)
	require.NoError(t, err)
	require.Len(t, sugar, 1)
	assert.False(t, sugar[0].ValueSecondary.Valid)
	assert.False(t, sugar[0].Note.Valid)

	none, err := store.ListVitals(ctx, "erin", "weight")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.NoError(t, store.RunSQLMaintenance(context.Background()))
}
