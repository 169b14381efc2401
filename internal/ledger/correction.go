package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Correction describes the effect of ApplyCorrection on a ledger.
type Correction struct {
	Date     time.Time
	Previous decimal.Decimal
	Amount   decimal.Decimal
	Delta    decimal.Decimal
	// Propagated counts the later days rewritten with the delta.
	Propagated int
	// Through is the last day rewritten; zero when nothing propagated.
	Through time.Time
}

// ApplyCorrection sets the balance of date to amount and shifts every later
// day up to and including today by the same delta, so running balances derived
// from the corrected day stay consistent. Each day in that window ends up with
// an explicit record. Nothing propagates when the effective balance on date
// was not positive before the correction.
//
// Every day in the window ends at its old effective balance plus delta. A day
// that only inherited a value therefore copies the already shifted day before
// it; re-reading its fallback and adding delta again would shift it twice.
func ApplyCorrection(l *Ledger, date time.Time, amount decimal.Decimal, today time.Time) Correction {
	date, today = Day(date), Day(today)

	current := l.Balance(date)
	delta := amount.Sub(current)
	l.Update(date, amount)

	c := Correction{Date: date, Previous: current, Amount: amount, Delta: delta}
	if !current.IsPositive() {
		return c
	}

	// Walk forward one day at a time. A day with its own record moves by the
	// delta; a day that only inherited a value copies the day before it, which
	// this loop has already shifted.
	for d := date.AddDate(0, 0, 1); !d.After(today); d = d.AddDate(0, 0, 1) {
		if r, ok := l.Lookup(d); ok {
			l.Update(d, r.Amount.Add(delta))
		} else {
			l.Update(d, l.Balance(d))
		}
		c.Propagated++
		c.Through = d
	}
	return c
}
