package quiz

import "errors"

// Engine error kinds. All map to 4xx at the HTTP boundary; callers branch
// with errors.Is.
var (
	// ErrConcurrentSession: the user already has a session in created,
	// active or paused state.
	ErrConcurrentSession = errors.New("user already has an open session")

	// ErrInvalidStateTransition: the operation is not valid for the
	// session's current status.
	ErrInvalidStateTransition = errors.New("operation not valid in current session state")

	// ErrStaleSlot: an answer was submitted for a slot that is not the
	// current cursor.
	ErrStaleSlot = errors.New("slot is not the current question")

	// ErrSessionNotFound covers both missing sessions and sessions owned
	// by someone else.
	ErrSessionNotFound = errors.New("session not found")

	// ErrValidation: malformed input that survived the HTTP layer.
	ErrValidation = errors.New("invalid input")
)

// errScopeExhausted is internal: the selector has no eligible question
// left. The engine reacts by completing the session, never by surfacing
// this to a caller.
var errScopeExhausted = errors.New("no eligible question remains in scope")
