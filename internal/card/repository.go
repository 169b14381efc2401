package card

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists card metadata.
type Repository interface {
	Create(ctx context.Context, card Card) error
	FindByNumber(ctx context.Context, number string) (Card, error)
	ListByUser(ctx context.Context, userID string) ([]Card, error)
	Delete(ctx context.Context, number string) error
}

// PostgresRepository stores cards in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a card record.
func (r *PostgresRepository) Create(ctx context.Context, card Card) error {
	cardID, err := uuid.Parse(card.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(card.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO cards (id, user_id, issuance_bank, number, created_at)
        VALUES ($1, $2, $3, $4, $5)`, cardID, userID, card.IssuanceBank, card.Number, card.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrCardExists
	}
	return err
}

// FindByNumber fetches card metadata by card number.
func (r *PostgresRepository) FindByNumber(ctx context.Context, number string) (Card, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, issuance_bank, number, created_at
        FROM cards WHERE number = $1`, number)
	c, err := scanCard(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Card{}, ErrCardNotFound
	}
	return c, err
}

// ListByUser returns the user's cards, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Card, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, issuance_bank, number, created_at
        FROM cards WHERE user_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// Delete removes a card; its balance records cascade.
func (r *PostgresRepository) Delete(ctx context.Context, number string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM cards WHERE number = $1`, number)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCardNotFound
	}
	return nil
}

func scanCard(row pgx.Row) (Card, error) {
	var (
		c         Card
		idVal     uuid.UUID
		userID    uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&idVal, &userID, &c.IssuanceBank, &c.Number, &createdAt); err != nil {
		return Card{}, err
	}
	c.ID = idVal.String()
	c.UserID = userID.String()
	c.CreatedAt = createdAt.UTC()
	return c, nil
}
