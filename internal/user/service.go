package user

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/google/uuid"
)

var (
    // ErrUserNotFound indicates no user matches the identifier.
    ErrUserNotFound = errors.New("user not found")
    // ErrInvalidEmail rejects addresses without a local part and a domain.
    ErrInvalidEmail = errors.New("invalid email")
    // ErrNameRequired rejects blank names.
    ErrNameRequired = errors.New("name is required")
)

// Service manages the user lifecycle.
type Service struct {
    repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
    return &Service{repo: repo}
}

// Create registers a user.
func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
    name := strings.TrimSpace(input.Name)
    if name == "" {
        return User{}, ErrNameRequired
    }
    email := strings.TrimSpace(input.Email)
    if at := strings.IndexByte(email, '@'); at <= 0 || at == len(email)-1 {
        return User{}, ErrInvalidEmail
    }

    user := User{
        ID:        uuid.New().String(),
        Name:      name,
        Email:     email,
        CreatedAt: time.Now().UTC(),
    }

    if err := s.repo.Create(ctx, user); err != nil {
        return User{}, err
    }

    return user, nil
}

// Get returns the user with the given identifier.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
    return s.repo.FindByID(ctx, id)
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id string) error {
    return s.repo.Delete(ctx, id)
}
