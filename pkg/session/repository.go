package session

import "context"

// Store persists sessions keyed by their opaque ID. The manager owns all
// lifecycle decisions; stores only hold state.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}
