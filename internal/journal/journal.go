// Package journal keeps an append-only record of committed balance corrections.
package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Entry describes one committed correction. Cards are identified by mask and
// fingerprint only.
type Entry struct {
	CardMasked      string          `json:"card_masked"`
	CardFingerprint string          `json:"card_fingerprint"`
	Date            string          `json:"date"`
	Previous        decimal.Decimal `json:"previous"`
	Amount          decimal.Decimal `json:"amount"`
	Delta           decimal.Decimal `json:"delta"`
	Propagated      int             `json:"propagated_days"`
	AppliedAt       time.Time       `json:"applied_at"`
}

// Indexed pairs an entry with its position in the journal.
type Indexed struct {
	Index uint64 `json:"index"`
	Entry Entry  `json:"entry"`
}

// Journal appends and replays correction entries.
type Journal interface {
	Append(ctx context.Context, entry Entry) (uint64, error)
	Since(index uint64) ([]Indexed, error)
}

// Nop discards entries. It is used when no journal directory is configured.
type Nop struct{}

// Append drops the entry.
func (Nop) Append(context.Context, Entry) (uint64, error) { return 0, nil }

// Since always returns nothing.
func (Nop) Since(uint64) ([]Indexed, error) { return nil, nil }
