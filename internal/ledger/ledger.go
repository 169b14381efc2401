package ledger

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day layout used on the wire and in rendered history.
const DateLayout = "2006-01-02"

const treeDegree = 16

var (
	// ErrLedgerNotFound indicates no ledger is registered under the requested card number.
	ErrLedgerNotFound = errors.New("ledger not found")
)

// Record is a single day's balance.
type Record struct {
	Date   time.Time
	Amount decimal.Decimal
}

func (r Record) String() string {
	return fmt.Sprintf("%s: %s", r.Date.Format(DateLayout), r.Amount.StringFixed(2))
}

func recordLess(a, b Record) bool {
	return a.Date.Before(b.Date)
}

// Ledger is an ordered set of daily balance records, at most one per day.
// A Ledger is not safe for concurrent use; callers serialize access per card.
type Ledger struct {
	tree  *btree.BTreeG[Record]
	dirty map[int64]struct{}
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		tree:  btree.NewG(treeDegree, recordLess),
		dirty: make(map[int64]struct{}),
	}
}

// FromRecords rebuilds a ledger from stored records. When two records share a
// day the later one in the slice wins. The result has no pending writes.
func FromRecords(records []Record) *Ledger {
	l := New()
	for _, r := range records {
		l.tree.ReplaceOrInsert(Record{Date: Day(r.Date), Amount: r.Amount})
	}
	return l
}

// Day truncates t to its calendar day, keeping the year, month and day as seen in t's location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// Balance returns the effective balance on date: the record for that day, or
// the closest earlier record, or zero when nothing is recorded on or before it.
func (l *Ledger) Balance(date time.Time) decimal.Decimal {
	amount := decimal.Zero
	l.tree.DescendLessOrEqual(Record{Date: Day(date)}, func(r Record) bool {
		amount = r.Amount
		return false
	})
	return amount
}

// Lookup returns the record stored for exactly that day.
func (l *Ledger) Lookup(date time.Time) (Record, bool) {
	return l.tree.Get(Record{Date: Day(date)})
}

// Insert writes amount for date, replacing any record already stored for that day.
func (l *Ledger) Insert(date time.Time, amount decimal.Decimal) {
	day := Day(date)
	l.tree.ReplaceOrInsert(Record{Date: day, Amount: amount})
	l.dirty[day.Unix()] = struct{}{}
}

// Update overwrites the record for date in place, or inserts one when the day
// has no record yet. It never touches other days.
func (l *Ledger) Update(date time.Time, amount decimal.Decimal) {
	l.Insert(date, amount)
}

// Len reports the number of stored records.
func (l *Ledger) Len() int {
	return l.tree.Len()
}

// History returns all records, most recent day first.
func (l *Ledger) History() []Record {
	out := make([]Record, 0, l.tree.Len())
	l.tree.Descend(func(r Record) bool {
		out = append(out, r)
		return true
	})
	return out
}

// WriteHistory renders one "<date>: <amount>" line per record, most recent day first.
func (l *Ledger) WriteHistory(w io.Writer) error {
	var err error
	l.tree.Descend(func(r Record) bool {
		_, err = fmt.Fprintln(w, r.String())
		return err == nil
	})
	return err
}

func (l *Ledger) String() string {
	var sb strings.Builder
	_ = l.WriteHistory(&sb)
	return sb.String()
}

// Clone returns an independent copy, pending writes included.
func (l *Ledger) Clone() *Ledger {
	dirty := make(map[int64]struct{}, len(l.dirty))
	for k := range l.dirty {
		dirty[k] = struct{}{}
	}
	return &Ledger{tree: l.tree.Clone(), dirty: dirty}
}

// Dirty returns the records written since the ledger was loaded or last
// marked clean, oldest day first.
func (l *Ledger) Dirty() []Record {
	out := make([]Record, 0, len(l.dirty))
	l.tree.Ascend(func(r Record) bool {
		if _, ok := l.dirty[r.Date.Unix()]; ok {
			out = append(out, r)
		}
		return true
	})
	return out
}

// MarkClean forgets pending writes, typically after they were persisted.
func (l *Ledger) MarkClean() {
	clear(l.dirty)
}
