package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionID identifies one conversation held in the session store.
type SessionID string

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Timestamp = time.Time

// NewSessionID returns a fresh opaque session identifier.
// Ids are never reused across distinct conversations.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}
