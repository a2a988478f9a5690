package database

import (
	"database/sql"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Vitals kinds.
const (
	KindBloodPressure = "blood_pressure"
	KindSugar         = "sugar"
)

// User represents a registered user. The credential column stores a bcrypt
// hash, never the raw secret.
type User struct {
	Username   string    `db:"username"`
	Credential string    `db:"credential"`
	CreatedAt  time.Time `db:"created_at"`
}

// ChatSession represents one conversation owned by a user. The session ID is
// derived from the owning username and the creation instant, making it unique
// per (username, instant) pair.
type ChatSession struct {
	SessionID string    `db:"session_id"`
	Username  string    `db:"username"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

// Message represents one turn in a chat session. ImageRef is set only when
// the user attached an image to the turn.
//
// Role alternation between user and assistant is intentionally not enforced
// at this layer; callers append turns in whatever order they produce them.
type Message struct {
	ID        int64          `db:"id"`
	SessionID string         `db:"session_id"`
	Role      string         `db:"role"`
	Content   string         `db:"content"`
	ImageRef  sql.NullString `db:"image_ref"`
	CreatedAt time.Time      `db:"created_at"`
}

// VitalReading represents one numeric health reading for a user.
// ValueSecondary is meaningful only for blood pressure (diastolic); for other
// kinds it is NULL.
type VitalReading struct {
	ID             int64           `db:"id"`
	Username       string          `db:"username"`
	Kind           string          `db:"kind"`
	ValuePrimary   float64         `db:"value_primary"`
	ValueSecondary sql.NullFloat64 `db:"value_secondary"`
	Note           sql.NullString  `db:"note"`
	CreatedAt      time.Time       `db:"created_at"`
}
