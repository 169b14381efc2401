package correction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/journal"
	"github.com/cardledger/cardledger/internal/ledger"
	"github.com/cardledger/cardledger/internal/logging"
	"github.com/cardledger/cardledger/internal/notification"
)

var (
	// ErrAccountNotFound indicates no ledger exists for the card number.
	ErrAccountNotFound = errors.New("account not found")
	// ErrPersistence indicates the record store rejected the write; the correction is not committed.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidDate rejects a missing date or one outside the allowed backfill window.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidAmount rejects a missing or malformed amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidAccountKey rejects an empty card number.
	ErrInvalidAccountKey = errors.New("invalid account key")
)

// Request asks for the balance of CardNumber on Date to become Amount.
type Request struct {
	CardNumber string
	Date       time.Time
	Amount     decimal.NullDecimal
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result reports the outcome of one batch item.
type Result struct {
	Index      int
	CardNumber string
	Status     string
	Err        error
	Correction ledger.Correction
}

// Options tunes how corrections are applied.
type Options struct {
	// Location decides the calendar day considered today. Defaults to UTC.
	Location *time.Location
	// MaxBackfillDays rejects corrections older than this many days. Zero disables the check.
	MaxBackfillDays int
	// NotifyTimeout bounds each correction notification. Defaults to 5s.
	NotifyTimeout time.Duration
	// Now overrides the wall clock, mainly for tests.
	Now func() time.Time
}

const defaultNotifyTimeout = 5 * time.Second

// cardLock serializes corrections of one card. refs counts holders and
// waiters so idle locks can be dropped.
type cardLock struct {
	mu   sync.Mutex
	refs int
}

// Service applies balance corrections to card ledgers.
type Service struct {
	store    ledger.Store
	journal  journal.Journal
	notifier notification.Notifier
	logger   *slog.Logger
	opts     Options

	locks  map[string]*cardLock
	lockMu sync.Mutex
}

// NewService constructs a correction service. journal and notifier may be nil.
func NewService(store ledger.Store, j journal.Journal, notifier notification.Notifier, logger *slog.Logger, opts Options) *Service {
	if j == nil {
		j = journal.Nop{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    store,
		journal:  j,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		locks:    make(map[string]*cardLock),
	}
}

// Today returns the current calendar day in the configured location.
func (s *Service) Today() time.Time {
	return ledger.Day(s.opts.Now().In(s.opts.Location))
}

// lockCard blocks until the caller holds key exclusively. The returned func
// releases it and forgets the lock once nobody holds or waits for it.
func (s *Service) lockCard(key string) (unlock func()) {
	s.lockMu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &cardLock{}
		s.locks[key] = l
	}
	l.refs++
	s.lockMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.lockMu.Lock()
		defer s.lockMu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
	}
}

func normalizeKey(number string) string {
	return strings.ReplaceAll(strings.TrimSpace(number), " ", "")
}

func (s *Service) validate(req Request, today time.Time) error {
	if normalizeKey(req.CardNumber) == "" {
		return ErrInvalidAccountKey
	}
	if req.Date.IsZero() {
		return ErrInvalidDate
	}
	if s.opts.MaxBackfillDays > 0 {
		oldest := today.AddDate(0, 0, -s.opts.MaxBackfillDays)
		if ledger.Day(req.Date).Before(oldest) {
			return fmt.Errorf("%w: older than %d days", ErrInvalidDate, s.opts.MaxBackfillDays)
		}
	}
	if !req.Amount.Valid {
		return ErrInvalidAmount
	}
	return nil
}

// Apply corrects one card's balance, propagates the change forward to today
// and persists the ledger in a single write. The card stays locked for the
// read-modify-persist sequence and its journal entry; the notification is
// sent after the lock is released.
func (s *Service) Apply(ctx context.Context, req Request) (ledger.Correction, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Correction{}, err
	}

	today := s.Today()
	if err := s.validate(req, today); err != nil {
		return ledger.Correction{}, err
	}
	key := normalizeKey(req.CardNumber)

	// A started correction runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	c, entry, err := s.commit(ctx, key, req, today)
	if err != nil {
		return ledger.Correction{}, err
	}
	s.notify(ctx, key, entry)
	return c, nil
}

func (s *Service) commit(ctx context.Context, key string, req Request, today time.Time) (ledger.Correction, journal.Entry, error) {
	unlock := s.lockCard(key)
	defer unlock()

	l, err := s.store.FindLedger(ctx, key)
	if err != nil {
		if errors.Is(err, ledger.ErrLedgerNotFound) {
			return ledger.Correction{}, journal.Entry{}, ErrAccountNotFound
		}
		return ledger.Correction{}, journal.Entry{}, fmt.Errorf("load ledger: %w", err)
	}

	c := ledger.ApplyCorrection(l, req.Date, req.Amount.Decimal, today)

	if err := s.store.Persist(ctx, key, l); err != nil {
		if errors.Is(err, ledger.ErrLedgerNotFound) {
			return ledger.Correction{}, journal.Entry{}, ErrAccountNotFound
		}
		return ledger.Correction{}, journal.Entry{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return c, s.record(ctx, key, c), nil
}

// record journals and logs a committed correction. It runs under the card
// lock so journal order matches commit order per card. Failures are logged
// only; the correction is already durable.
func (s *Service) record(ctx context.Context, key string, c ledger.Correction) journal.Entry {
	entry := journal.Entry{
		CardMasked:      logging.MaskCard(key),
		CardFingerprint: logging.Fingerprint(key),
		Date:            c.Date.Format(ledger.DateLayout),
		Previous:        c.Previous,
		Amount:          c.Amount,
		Delta:           c.Delta,
		Propagated:      c.Propagated,
		AppliedAt:       s.opts.Now().UTC(),
	}

	logger := logging.FromContext(ctx, s.logger)

	index, err := s.journal.Append(ctx, entry)
	if err != nil {
		logger.Error("journal correction failed", logging.Card(key), slog.Any("error", err))
	}

	logger.Info("balance corrected",
		logging.Card(key),
		slog.String("date", entry.Date),
		slog.String("previous", c.Previous.String()),
		slog.String("amount", c.Amount.String()),
		slog.String("delta", c.Delta.String()),
		slog.Int("propagated_days", c.Propagated),
		slog.Uint64("journal_index", index),
	)
	return entry
}

// notify publishes a committed correction within NotifyTimeout.
func (s *Service) notify(ctx context.Context, key string, entry journal.Entry) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.NotifyTimeout)
	defer cancel()

	err := s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindBalanceCorrected,
		Destination: entry.CardFingerprint,
		Body:        fmt.Sprintf("Balance of card %s on %s corrected to %s", entry.CardMasked, entry.Date, entry.Amount.StringFixed(2)),
		Payload:     entry,
	})
	if err != nil {
		logging.FromContext(ctx, s.logger).Warn("notify correction failed", logging.Card(key), slog.Any("error", err))
	}
}

// ApplyBatch applies the requests in order. A failing item is reported and
// skipped; earlier items stay committed and later items are still processed.
// Once ctx is done the remaining items are reported with the context error.
func (s *Service) ApplyBatch(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, 0, len(reqs))
	for i, req := range reqs {
		res := Result{Index: i, CardNumber: req.CardNumber, Status: StatusOK}
		c, err := s.Apply(ctx, req)
		if err != nil {
			res.Status = StatusError
			res.Err = err
			logging.FromContext(ctx, s.logger).Warn("correction rejected",
				slog.Int("index", i),
				logging.Card(normalizeKey(req.CardNumber)),
				slog.Any("error", err),
			)
		} else {
			res.Correction = c
		}
		results = append(results, res)
	}
	return results
}

// Balance returns the effective balance of the card on date.
func (s *Service) Balance(ctx context.Context, number string, date time.Time) (decimal.Decimal, error) {
	l, err := s.find(ctx, number)
	if err != nil {
		return decimal.Zero, err
	}
	return l.Balance(date), nil
}

// History returns the card's ledger for rendering.
func (s *Service) History(ctx context.Context, number string) (*ledger.Ledger, error) {
	return s.find(ctx, number)
}

func (s *Service) find(ctx context.Context, number string) (*ledger.Ledger, error) {
	key := normalizeKey(number)
	if key == "" {
		return nil, ErrInvalidAccountKey
	}
	l, err := s.store.FindLedger(ctx, key)
	if errors.Is(err, ledger.ErrLedgerNotFound) {
		return nil, ErrAccountNotFound
	}
	return l, err
}
