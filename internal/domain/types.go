package domain

import (
	"strconv"
	"time"
)

// UserID is the canonical user identity. Transports normalize their native
// identifier (e.g. Telegram's int64) to this type at the boundary.
type UserID string

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role
	Content string
}

// DefaultSessionName derives the name used for a registry's initial session
// and for sessions created without an explicit name. Second resolution.
func DefaultSessionName(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
