package ledger

import (
	"context"
	"sync"
)

type inMemoryStore struct {
	mu      sync.RWMutex
	ledgers map[string]*Ledger
}

// NewInMemory creates a concurrency-safe in-memory store useful for unit tests and local runs.
func NewInMemory() Store {
	return &inMemoryStore{ledgers: make(map[string]*Ledger)}
}

func (s *inMemoryStore) EnsureLedger(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ledgers[key]; !exists {
		s.ledgers[key] = New()
	}
	return nil
}

func (s *inMemoryStore) FindLedger(_ context.Context, key string) (*Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, exists := s.ledgers[key]
	if !exists {
		return nil, ErrLedgerNotFound
	}
	return l.Clone(), nil
}

func (s *inMemoryStore) Persist(_ context.Context, key string, l *Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ledgers[key]; !exists {
		return ErrLedgerNotFound
	}
	stored := l.Clone()
	stored.MarkClean()
	s.ledgers[key] = stored
	l.MarkClean()
	return nil
}

func (s *inMemoryStore) DropLedger(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledgers, key)
	return nil
}
