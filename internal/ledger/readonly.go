package ledger

import "context"

// ReadOnly wraps l so that reads pass through and writes are dropped. Dry
// runs select through it to leave the stored ledger untouched.
func ReadOnly(l Ledger) Ledger {
	return readOnly{l}
}

type readOnly struct {
	Ledger
}

func (readOnly) RecordPosted(context.Context, string) error { return nil }
func (readOnly) Reset(context.Context) error                { return nil }
