package ledger

import "context"

// Store is the record store ledgers are loaded from and persisted to. Ledgers
// are addressed by card number.
type Store interface {
	// EnsureLedger registers an empty ledger for key if none exists.
	EnsureLedger(ctx context.Context, key string) error
	// FindLedger returns a private copy of the ledger, or ErrLedgerNotFound.
	FindLedger(ctx context.Context, key string) (*Ledger, error)
	// Persist stores every pending write of l in a single scoped write.
	Persist(ctx context.Context, key string, l *Ledger) error
	// DropLedger removes the ledger and all its records.
	DropLedger(ctx context.Context, key string) error
}
