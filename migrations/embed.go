// Package migrations embeds the SQL files that define the persistent schema
// (users, chat sessions, messages, health vitals).
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
