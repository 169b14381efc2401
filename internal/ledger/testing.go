package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// SeedRecords is a test helper that writes records straight into an in-memory store,
// creating the ledger when needed. Amounts are given as decimal strings.
func SeedRecords(s Store, key string, records map[string]string) {
	mem, ok := s.(*inMemoryStore)
	if !ok {
		return
	}
	_ = mem.EnsureLedger(context.Background(), key)

	mem.mu.Lock()
	defer mem.mu.Unlock()
	l := mem.ledgers[key]
	for date, amount := range records {
		d, err := ParseDate(date)
		if err != nil {
			panic(err)
		}
		l.Insert(d, decimal.RequireFromString(amount))
	}
	l.MarkClean()
}
