package card

import (
    "context"
    "sort"
    "sync"
)

type memoryRepository struct {
    mu      sync.RWMutex
    storage map[string]Card
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
    return &memoryRepository{storage: make(map[string]Card)}
}

func (r *memoryRepository) Create(_ context.Context, card Card) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    if _, exists := r.storage[card.Number]; exists {
        return ErrCardExists
    }
    r.storage[card.Number] = card
    return nil
}

func (r *memoryRepository) FindByNumber(_ context.Context, number string) (Card, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    card, ok := r.storage[number]
    if !ok {
        return Card{}, ErrCardNotFound
    }
    return card, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Card, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    var cards []Card
    for _, c := range r.storage {
        if c.UserID == userID {
            cards = append(cards, c)
        }
    }
    sort.Slice(cards, func(i, j int) bool {
        if cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
            return cards[i].Number < cards[j].Number
        }
        return cards[i].CreatedAt.Before(cards[j].CreatedAt)
    })
    return cards, nil
}

func (r *memoryRepository) Delete(_ context.Context, number string) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    if _, ok := r.storage[number]; !ok {
        return ErrCardNotFound
    }
    delete(r.storage, number)
    return nil
}
