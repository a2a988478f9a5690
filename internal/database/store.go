package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// Store defines the interface for database operations. All methods accept a
// context.Context for cancellation and timeouts, are atomic per call, and
// return empty slices (never errors) for reads that match nothing.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateUser registers a new user. It returns false when the username is
	// already taken; that is a normal outcome, not an error.
	CreateUser(ctx context.Context, username, credential string) (bool, error)

	// VerifyUser checks a credential against the stored hash. Unknown users
	// and wrong credentials both yield false with a nil error.
	VerifyUser(ctx context.Context, username, credential string) (bool, error)

	// CreateSession creates a chat session for the user and returns its ID.
	CreateSession(ctx context.Context, username, title string) (string, error)

	// ListSessions returns the user's sessions, most recent first.
	ListSessions(ctx context.Context, username string) ([]ChatSession, error)

	// AppendMessage appends one turn to a session. Timestamps assigned here
	// are non-decreasing within a session.
	AppendMessage(ctx context.Context, sessionID, role, content, imageRef string) error

	// ListMessages returns a session's messages, oldest first.
	ListMessages(ctx context.Context, sessionID string) ([]Message, error)

	// AddVital records one health reading. secondary may be nil for kinds
	// without a second component.
	AddVital(ctx context.Context, username, kind string, primary float64, secondary *float64, note string) error

	// ListVitals returns a user's readings of one kind, oldest first.
	ListVitals(ctx context.Context, username, kind string) ([]VitalReading, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser hashes the credential and inserts the user row. A uniqueness
// conflict on username is reported as (false, nil) so callers can present a
// simple message instead of handling an error.
func (s *sqlxStore) CreateUser(ctx context.Context, username, credential string) (bool, error) {
	if username == "" {
		return false, fmt.Errorf("username cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash credential: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (username, credential, created_at) VALUES (?, ?, ?)`,
		username, string(hash), time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert user", "username", username, "error", err)
		return false, fmt.Errorf("failed to create user %s: %w", username, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	if affected == 0 {
		s.logger.DebugContext(ctx, "Username already taken", "username", username)
		return false, nil
	}

	s.logger.InfoContext(ctx, "User created", "username", username)
	return true, nil
}

// VerifyUser compares the supplied credential against the stored bcrypt hash.
func (s *sqlxStore) VerifyUser(ctx context.Context, username, credential string) (bool, error) {
	var stored string
	err := s.db.GetContext(ctx, &stored,
		`SELECT credential FROM users WHERE username = ?`, username)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to look up user credential", "username", username, "error", err)
		return false, fmt.Errorf("failed to verify user %s: %w", username, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(credential)) != nil {
		return false, nil
	}
	return true, nil
}

// CreateSession inserts a new chat session. The session ID combines the
// owning username with the creation instant, which keeps it unique per
// (username, instant) pair and human-auditable in the database.
func (s *sqlxStore) CreateSession(ctx context.Context, username, title string) (string, error) {
	now := time.Now().UTC()
	sessionID := fmt.Sprintf("%s@%d", username, now.UnixNano())

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (session_id, username, title, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, username, title, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert chat session", "username", username, "error", err)
		return "", fmt.Errorf("failed to create session for %s: %w", username, err)
	}

	s.logger.DebugContext(ctx, "Chat session created", "session_id", sessionID)
	return sessionID, nil
}

// ListSessions returns the user's sessions, most recent first.
func (s *sqlxStore) ListSessions(ctx context.Context, username string) ([]ChatSession, error) {
	sessions := []ChatSession{}
	query := `SELECT session_id, username, title, created_at
	          FROM chat_sessions WHERE username = ?
	          ORDER BY created_at DESC, session_id DESC`

	if err := s.db.SelectContext(ctx, &sessions, query, username); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list sessions", "username", username, "error", err)
		return nil, fmt.Errorf("failed to list sessions for %s: %w", username, err)
	}
	return sessions, nil
}

// AppendMessage appends one turn to a session inside a transaction. The
// timestamp is clamped to the session's current maximum so retrieval order by
// creation time is always non-decreasing, even across clock adjustments.
func (s *sqlxStore) AppendMessage(ctx context.Context, sessionID, role, content, imageRef string) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("invalid message role %q", role)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	now := time.Now().UTC()

	// A direct column read keeps the TIMESTAMP decltype, which aggregate
	// expressions lose, so the driver scans it as time.Time.
	var last time.Time
	err = tx.GetContext(ctx, &last,
		`SELECT created_at FROM messages WHERE session_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		sessionID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First message in the session, nothing to clamp against.
	case err != nil:
		return fmt.Errorf("failed to read last message timestamp: %w", err)
	case last.After(now):
		now = last
	}

	ref := sql.NullString{String: imageRef, Valid: imageRef != ""}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, image_ref, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, role, content, ref, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert message", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to append message to %s: %w", sessionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}
	return nil
}

// ListMessages returns a session's messages oldest first. The autoincrement
// id breaks timestamp ties, so the order is stable across reads.
func (s *sqlxStore) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	messages := []Message{}
	query := `SELECT id, session_id, role, content, image_ref, created_at
	          FROM messages WHERE session_id = ?
	          ORDER BY created_at ASC, id ASC`

	if err := s.db.SelectContext(ctx, &messages, query, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list messages", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to list messages for %s: %w", sessionID, err)
	}
	return messages, nil
}

// AddVital records one health reading for the user.
func (s *sqlxStore) AddVital(ctx context.Context, username, kind string, primary float64, secondary *float64, note string) error {
	sec := sql.NullFloat64{}
	if secondary != nil {
		sec = sql.NullFloat64{Float64: *secondary, Valid: true}
	}
	n := sql.NullString{String: note, Valid: note != ""}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO health_vitals (username, kind, value_primary, value_secondary, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		username, kind, primary, sec, n, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert vital reading", "username", username, "kind", kind, "error", err)
		return fmt.Errorf("failed to add %s reading for %s: %w", kind, username, err)
	}
	return nil
}

// ListVitals returns a user's readings of one kind, oldest first.
func (s *sqlxStore) ListVitals(ctx context.Context, username, kind string) ([]VitalReading, error) {
	readings := []VitalReading{}
	query := `SELECT id, username, kind, value_primary, value_secondary, note, created_at
	          FROM health_vitals WHERE username = ? AND kind = ?
	          ORDER BY created_at ASC, id ASC`

	if err := s.db.SelectContext(ctx, &readings, query, username, kind); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list vitals", "username", username, "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to list %s readings for %s: %w", kind, username, err)
	}
	return readings, nil
}

// RunSQLMaintenance performs VACUUM on the database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
