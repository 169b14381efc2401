package user

import (
    "context"
    "errors"
    "sync"
)

type memoryRepository struct {
    mu    sync.RWMutex
    users map[string]User
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
    return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    if _, exists := r.users[user.ID]; exists {
        return errors.New("user exists")
    }
    r.users[user.ID] = user
    return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    user, ok := r.users[id]
    if !ok {
        return User{}, ErrUserNotFound
    }
    return user, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    if _, ok := r.users[id]; !ok {
        return ErrUserNotFound
    }
    delete(r.users, id)
    return nil
}
