package domain

import "errors"

// Relay error taxonomy. Adapters wrap these sentinels so the HTTP layer
// can map failures to status codes with errors.Is.
var (
	// ErrEmptyTurn: the request carried neither text nor an image.
	ErrEmptyTurn = errors.New("turn must carry text or an image")

	// ErrBadImage: the image payload is not valid base64.
	ErrBadImage = errors.New("invalid image payload")

	// ErrStoreUnavailable: the session store could not be reached.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrUpstream: the model service failed or returned no usable text.
	ErrUpstream = errors.New("model service error")
)
