package domain

// Turn is one role-tagged message in a session's ordered history.
// A turn carries text, an image, or both; it is immutable once appended.
type Turn struct {
	Role      Role
	Text      string
	ImageB64  string // base64-encoded raw image bytes, optional
	CreatedAt Timestamp
}

// Validate checks the minimum content requirement for a turn.
func (t Turn) Validate() error {
	if t.Text == "" && t.ImageB64 == "" {
		return ErrEmptyTurn
	}
	return nil
}

// HasImage reports whether the turn carries an image payload.
func (t Turn) HasImage() bool {
	return t.ImageB64 != ""
}

// Prompt is the new user turn to submit to the model, already decoded,
// plus the language the reply should be written in.
type Prompt struct {
	Text       string
	ImageBytes []byte
	Language   string
}
