package domain

import "context"

// SessionStore persists per-session conversation history with a
// time-to-live. Absence of a session is a normal outcome, not an error.
type SessionStore interface {
	// GetTurns returns the stored history in append order, or nil when
	// the session is absent or expired.
	GetTurns(ctx context.Context, id SessionID) ([]Turn, error)

	// AppendTurn atomically appends one turn to the session's history and
	// refreshes its expiry. Two concurrent appends to the same session
	// must both survive.
	AppendTurn(ctx context.Context, id SessionID, turn Turn) error

	// Touch refreshes the session's expiry without modifying history.
	Touch(ctx context.Context, id SessionID) error
}

// ModelClient issues a single request/response call to the generative
// model. No retries, no streaming; any failure is an ErrUpstream.
type ModelClient interface {
	Generate(ctx context.Context, history []Turn, prompt Prompt) (string, error)
}
