package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyCorrectionPropagatesDeltaUpToToday(t *testing.T) {
	l := New()
	l.Insert(day(t, "2024-05-01"), amt("100"))
	l.Insert(day(t, "2024-05-05"), amt("300"))

	c := ApplyCorrection(l, day(t, "2024-05-01"), amt("150"), day(t, "2024-05-05"))

	requireAmount(t, "100", c.Previous)
	requireAmount(t, "50", c.Delta)
	require.Equal(t, 4, c.Propagated)
	require.Equal(t, day(t, "2024-05-05"), c.Through)

	requireAmount(t, "150", l.Balance(day(t, "2024-05-01")))
	requireAmount(t, "350", l.Balance(day(t, "2024-05-05")))
	for _, d := range []string{"2024-05-02", "2024-05-03", "2024-05-04"} {
		r, ok := l.Lookup(day(t, d))
		require.Truef(t, ok, "expected explicit record on %s", d)
		requireAmount(t, "150", r.Amount)
	}
	require.Equal(t, 5, l.Len())
}

func TestApplyCorrectionShiftsEveryLaterEffectiveBalance(t *testing.T) {
	l := New()
	seed := map[string]string{
		"2024-03-01": "500",
		"2024-03-04": "450.10",
		"2024-03-05": "-20",
		"2024-03-09": "0",
		"2024-03-10": "1000",
	}
	for d, a := range seed {
		l.Insert(day(t, d), amt(a))
	}
	start, today := day(t, "2024-03-02"), day(t, "2024-03-12")

	before := map[time.Time]string{}
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		before[d] = l.Balance(d).String()
	}

	c := ApplyCorrection(l, start, amt("512.35"), today)
	requireAmount(t, "500", c.Previous)
	requireAmount(t, "12.35", c.Delta)

	requireAmount(t, "512.35", l.Balance(start))
	for d := start.AddDate(0, 0, 1); !d.After(today); d = d.AddDate(0, 0, 1) {
		want := amt(before[d]).Add(c.Delta)
		r, ok := l.Lookup(d)
		require.Truef(t, ok, "expected explicit record on %s", d.Format(DateLayout))
		require.Truef(t, want.Equal(r.Amount), "%s: expected %s, got %s", d.Format(DateLayout), want, r.Amount)
	}
	requireAmount(t, "500", l.Balance(day(t, "2024-03-01")))
}

func TestApplyCorrectionWithoutPositiveBaselineTouchesOnlyThatDay(t *testing.T) {
	cases := map[string]map[string]string{
		"empty ledger":    {},
		"zero balance":    {"2024-05-01": "0", "2024-05-04": "40"},
		"negative":        {"2024-05-01": "-10", "2024-05-04": "40"},
		"only later data": {"2024-05-04": "40"},
	}
	for name, seed := range cases {
		t.Run(name, func(t *testing.T) {
			l := New()
			for d, a := range seed {
				l.Insert(day(t, d), amt(a))
			}
			before := l.History()

			c := ApplyCorrection(l, day(t, "2024-05-02"), amt("70"), day(t, "2024-05-06"))
			require.Zero(t, c.Propagated)
			require.True(t, c.Through.IsZero())

			requireAmount(t, "70", l.Balance(day(t, "2024-05-02")))
			for _, r := range before {
				got, ok := l.Lookup(r.Date)
				require.True(t, ok)
				require.True(t, r.Amount.Equal(got.Amount))
			}
			require.Equal(t, len(before)+1, l.Len())
		})
	}
}

func TestApplyCorrectionOnTodayOrLaterDoesNotPropagate(t *testing.T) {
	l := New()
	l.Insert(day(t, "2024-05-01"), amt("100"))

	c := ApplyCorrection(l, day(t, "2024-05-03"), amt("90"), day(t, "2024-05-03"))
	require.Zero(t, c.Propagated)
	requireAmount(t, "-10", c.Delta)

	c = ApplyCorrection(l, day(t, "2024-05-10"), amt("80"), day(t, "2024-05-03"))
	require.Zero(t, c.Propagated)
	require.Equal(t, 3, l.Len())
}

func TestApplyCorrectionKeepsHistoryStrictlyDescending(t *testing.T) {
	l := New()
	l.Insert(day(t, "2024-01-01"), amt("10"))
	l.Insert(day(t, "2024-01-20"), amt("30"))

	ApplyCorrection(l, day(t, "2024-01-01"), amt("15"), day(t, "2024-01-31"))

	history := l.History()
	require.Len(t, history, 31)
	for i := 1; i < len(history); i++ {
		require.True(t, history[i-1].Date.After(history[i].Date))
	}
	requireAmount(t, "35", l.Balance(day(t, "2024-01-31")))
}
