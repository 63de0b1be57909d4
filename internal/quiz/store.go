package quiz

import "context"

// Store is the durable home of sessions. The engine holds no state across
// calls beyond what it reads and writes here within one operation.
//
// Contract:
//   - CreateSession fails with ErrConcurrentSession when the user already
//     has a non-terminal session; the check is atomic with insertion.
//   - UpdateSession replaces the whole session (slots and answers
//     included) in one all-or-nothing write.
//   - GetSession returns ErrSessionNotFound for unknown IDs.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	ListSessions(ctx context.Context, userID string, limit, offset int) ([]*Session, error)
}
