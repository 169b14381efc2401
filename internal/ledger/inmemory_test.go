package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestInMemoryStore_FindReturnsPrivateCopy(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	SeedRecords(s, "4111111111111111", map[string]string{"2024-05-01": "100"})

	l, err := s.FindLedger(ctx, "4111111111111111")
	if err != nil {
		t.Fatalf("find ledger: %v", err)
	}
	ApplyCorrection(l, day(t, "2024-05-01"), amt("150"), day(t, "2024-05-03"))

	unpersisted, err := s.FindLedger(ctx, "4111111111111111")
	if err != nil {
		t.Fatalf("find ledger: %v", err)
	}
	if unpersisted.Len() != 1 {
		t.Fatalf("expected store untouched before persist, got %d records", unpersisted.Len())
	}

	if err := s.Persist(ctx, "4111111111111111", l); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if len(l.Dirty()) != 0 {
		t.Fatalf("expected persisted ledger to be clean")
	}

	stored, err := s.FindLedger(ctx, "4111111111111111")
	if err != nil {
		t.Fatalf("find ledger: %v", err)
	}
	if stored.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", stored.Len())
	}
	if got := stored.Balance(day(t, "2024-05-03")); !got.Equal(amt("150")) {
		t.Fatalf("expected 150 on 2024-05-03, got %s", got)
	}
}

func TestInMemoryStore_UnknownKey(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	if _, err := s.FindLedger(ctx, "missing"); !errors.Is(err, ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}
	if err := s.Persist(ctx, "missing", New()); !errors.Is(err, ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound on persist, got %v", err)
	}
}

func TestInMemoryStore_EnsureIsIdempotentAndDropRemoves(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	SeedRecords(s, "card", map[string]string{"2024-05-01": "1"})

	if err := s.EnsureLedger(ctx, "card"); err != nil {
		t.Fatalf("ensure ledger: %v", err)
	}
	l, err := s.FindLedger(ctx, "card")
	if err != nil {
		t.Fatalf("find ledger: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("expected existing ledger kept, got %d records", l.Len())
	}

	if err := s.DropLedger(ctx, "card"); err != nil {
		t.Fatalf("drop ledger: %v", err)
	}
	if _, err := s.FindLedger(ctx, "card"); !errors.Is(err, ErrLedgerNotFound) {
		t.Fatalf("expected dropped ledger to be gone, got %v", err)
	}
}

func TestInMemoryStore_ConcurrentPersistAcrossCards(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	const workers = 10
	for i := 0; i < workers; i++ {
		if err := s.EnsureLedger(ctx, fmt.Sprintf("card-%d", i)); err != nil {
			t.Fatalf("ensure ledger: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("card-%d", i)
			l, err := s.FindLedger(ctx, key)
			if err != nil {
				t.Errorf("find %s: %v", key, err)
				return
			}
			l.Insert(day(t, "2024-05-01"), amt(fmt.Sprint(i+1)))
			if err := s.Persist(ctx, key, l); err != nil {
				t.Errorf("persist %s: %v", key, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		l, err := s.FindLedger(ctx, fmt.Sprintf("card-%d", i))
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got := l.Balance(day(t, "2024-05-01")); !got.Equal(amt(fmt.Sprint(i + 1))) {
			t.Fatalf("card-%d: expected %d, got %s", i, i+1, got)
		}
	}
}
