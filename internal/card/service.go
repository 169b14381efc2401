package card

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/cardledger/cardledger/internal/ledger"
    "github.com/cardledger/cardledger/internal/user"
)

var (
    // ErrCardNotFound indicates no card carries the requested number.
    ErrCardNotFound = errors.New("credit card not found")
    // ErrCardExists rejects a second card with the same number.
    ErrCardExists = errors.New("credit card already exists")
    // ErrInvalidNumber rejects malformed card numbers.
    ErrInvalidNumber = errors.New("invalid card number")
)

// Service manages cards and the lifecycle of their balance ledgers.
type Service struct {
    repo    Repository
    users   *user.Service
    ledgers ledger.Store
}

// NewService builds a card service instance.
func NewService(repo Repository, users *user.Service, ledgers ledger.Store) *Service {
    return &Service{repo: repo, users: users, ledgers: ledgers}
}

// CreateInput captures data required to add a card to a user.
type CreateInput struct {
    UserID       string
    IssuanceBank string
    Number       string
}

// Create adds a card to an existing user and provisions its empty ledger.
func (s *Service) Create(ctx context.Context, input CreateInput) (Card, error) {
    number, err := NormalizeNumber(input.Number)
    if err != nil {
        return Card{}, err
    }
    if _, err := s.users.Get(ctx, input.UserID); err != nil {
        return Card{}, err
    }
    if _, err := s.repo.FindByNumber(ctx, number); err == nil {
        return Card{}, ErrCardExists
    } else if !errors.Is(err, ErrCardNotFound) {
        return Card{}, err
    }

    card := Card{
        ID:           uuid.New().String(),
        UserID:       input.UserID,
        IssuanceBank: strings.TrimSpace(input.IssuanceBank),
        Number:       number,
        CreatedAt:    time.Now().UTC(),
    }

    if err := s.repo.Create(ctx, card); err != nil {
        return Card{}, err
    }
    if err := s.ledgers.EnsureLedger(ctx, card.Number); err != nil {
        return Card{}, fmt.Errorf("provision ledger: %w", err)
    }

    return card, nil
}

// ListByUser returns the user's cards.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Card, error) {
    if _, err := s.users.Get(ctx, userID); err != nil {
        return nil, err
    }
    return s.repo.ListByUser(ctx, userID)
}

// OwnerOf returns the identifier of the user holding the card.
func (s *Service) OwnerOf(ctx context.Context, number string) (string, error) {
    c, err := s.repo.FindByNumber(ctx, strings.ReplaceAll(number, " ", ""))
    if err != nil {
        return "", err
    }
    return c.UserID, nil
}

// Delete removes the card and its ledger.
func (s *Service) Delete(ctx context.Context, number string) error {
    number = strings.ReplaceAll(number, " ", "")
    if _, err := s.repo.FindByNumber(ctx, number); err != nil {
        return err
    }
    if err := s.ledgers.DropLedger(ctx, number); err != nil {
        return err
    }
    return s.repo.Delete(ctx, number)
}

// DeleteForUser removes every card the user holds.
func (s *Service) DeleteForUser(ctx context.Context, userID string) error {
    cards, err := s.repo.ListByUser(ctx, userID)
    if err != nil {
        return err
    }
    for _, c := range cards {
        if err := s.Delete(ctx, c.Number); err != nil && !errors.Is(err, ErrCardNotFound) {
            return err
        }
    }
    return nil
}

// NormalizeNumber strips spaces and checks the number has 12 to 19 digits.
func NormalizeNumber(number string) (string, error) {
    digits := strings.ReplaceAll(strings.TrimSpace(number), " ", "")
    if len(digits) < 12 || len(digits) > 19 {
        return "", fmt.Errorf("%w: must be between 12 and 19 digits", ErrInvalidNumber)
    }
    for _, r := range digits {
        if r < '0' || r > '9' {
            return "", fmt.Errorf("%w: must be numeric", ErrInvalidNumber)
        }
    }
    return digits, nil
}
