// Package ledger remembers which catalog items have already been posted so
// the catalog bot cycles through the whole catalog before repeating itself.
package ledger

import (
	"context"
	"errors"
)

var (
	// ErrLedgerIO is returned when the ledger storage cannot be read or written.
	ErrLedgerIO = errors.New("ledger io")
	// ErrNoCandidates is returned when the catalog has no postable item.
	ErrNoCandidates = errors.New("no postable catalog items")
)

// Ledger is a persisted set of posted item ids.
type Ledger interface {
	// HasPosted reports whether id was recorded since the last reset.
	HasPosted(ctx context.Context, id string) (bool, error)

	// RecordPosted adds id. Recording an id twice is allowed.
	RecordPosted(ctx context.Context, id string) error

	// Reset forgets every recorded id.
	Reset(ctx context.Context) error

	// IDs returns the distinct recorded ids.
	IDs(ctx context.Context) ([]string, error)
}
