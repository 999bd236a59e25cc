package ledger

import (
	"context"
	"fmt"

	"github.com/abdulachik/skyposter/internal/db"
)

// SQLiteLedger keeps the posted set in the posted_items table.
type SQLiteLedger struct {
	store *db.Store
}

// NewSQLiteLedger creates a ledger on a migrated store.
func NewSQLiteLedger(store *db.Store) *SQLiteLedger {
	return &SQLiteLedger{store: store}
}

func (l *SQLiteLedger) HasPosted(ctx context.Context, id string) (bool, error) {
	n, err := l.store.HasPostedItem(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: lookup %s: %w", ErrLedgerIO, id, err)
	}
	return n > 0, nil
}

func (l *SQLiteLedger) RecordPosted(ctx context.Context, id string) error {
	if err := l.store.RecordPostedItem(ctx, id); err != nil {
		return fmt.Errorf("%w: record %s: %w", ErrLedgerIO, id, err)
	}
	return nil
}

func (l *SQLiteLedger) Reset(ctx context.Context) error {
	if err := l.store.ClearPostedItems(ctx); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrLedgerIO, err)
	}
	return nil
}

func (l *SQLiteLedger) IDs(ctx context.Context) ([]string, error) {
	ids, err := l.store.ListPostedItemIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrLedgerIO, err)
	}
	return ids, nil
}
