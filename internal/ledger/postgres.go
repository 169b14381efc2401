package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore keeps balance records in PostgreSQL, one row per card and day.
//
//	balance_records (card_id uuid references cards(id) on delete cascade,
//	                 balance_date date, amount numeric,
//	                 primary key (card_id, balance_date))
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureLedger checks the card exists; its ledger starts out as zero rows.
func (s *PostgresStore) EnsureLedger(ctx context.Context, key string) error {
	_, err := cardIDForNumber(ctx, s.db, key, false)
	return err
}

// FindLedger loads every record of the card into memory.
func (s *PostgresStore) FindLedger(ctx context.Context, key string) (*Ledger, error) {
	cardID, err := cardIDForNumber(ctx, s.db, key, false)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `SELECT balance_date, amount FROM balance_records WHERE card_id = $1`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			date   time.Time
			amount decimal.Decimal
		)
		if err := rows.Scan(&date, &amount); err != nil {
			return nil, err
		}
		records = append(records, Record{Date: date, Amount: amount})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return FromRecords(records), nil
}

// Persist upserts the pending records in one transaction while holding the card row lock.
func (s *PostgresStore) Persist(ctx context.Context, key string, l *Ledger) error {
	pending := l.Dirty()
	if len(pending) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	cardID, err := cardIDForNumber(ctx, tx, key, true)
	if err != nil {
		return err
	}

	if err := tx.SendBatch(ctx, upsertBatch(cardID, pending)).Close(); err != nil {
		return fmt.Errorf("upsert balance records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	l.MarkClean()
	return nil
}

const upsertRecord = `INSERT INTO balance_records (card_id, balance_date, amount) VALUES ($1, $2, $3)
        ON CONFLICT (card_id, balance_date) DO UPDATE SET amount = EXCLUDED.amount`

// upsertBatch queues one upsert per record.
func upsertBatch(cardID uuid.UUID, records []Record) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(upsertRecord, cardID, r.Date, r.Amount)
	}
	return batch
}

// DropLedger deletes all records of the card. Removing the card row cascades as well.
func (s *PostgresStore) DropLedger(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM balance_records
        WHERE card_id = (SELECT id FROM cards WHERE number = $1)`, key)
	return err
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func cardIDForNumber(ctx context.Context, q querier, number string, lock bool) (uuid.UUID, error) {
	query := `SELECT id FROM cards WHERE number = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var id uuid.UUID
	if err := q.QueryRow(ctx, query, number).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrLedgerNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}
