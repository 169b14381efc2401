package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, amt(want).Equal(got), "expected %s, got %s", want, got)
}

func TestBalanceFallsBackToNearestPriorRecord(t *testing.T) {
	l := New()
	requireAmount(t, "0", l.Balance(day(t, "2024-05-01")))

	l.Insert(day(t, "2024-05-01"), amt("100"))
	requireAmount(t, "100", l.Balance(day(t, "2024-05-01")))
	requireAmount(t, "100", l.Balance(day(t, "2024-05-02")))
	requireAmount(t, "0", l.Balance(day(t, "2024-04-30")))

	l.Insert(day(t, "2024-05-03"), amt("200"))
	requireAmount(t, "100", l.Balance(day(t, "2024-05-02")))
	requireAmount(t, "200", l.Balance(day(t, "2024-05-03")))
	requireAmount(t, "200", l.Balance(day(t, "2030-01-01")))
}

func TestBalanceIgnoresTimeOfDay(t *testing.T) {
	l := New()
	l.Insert(time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC), amt("42.5"))

	requireAmount(t, "42.5", l.Balance(time.Date(2024, 5, 1, 0, 0, 1, 0, time.UTC)))
	_, ok := l.Lookup(day(t, "2024-05-01"))
	require.True(t, ok)
}

func TestInsertOverwritesSameDay(t *testing.T) {
	l := New()
	l.Insert(day(t, "2024-05-01"), amt("100"))
	l.Insert(day(t, "2024-05-01"), amt("75.25"))

	require.Equal(t, 1, l.Len())
	requireAmount(t, "75.25", l.Balance(day(t, "2024-05-01")))
}

func TestUpdateExistingAndNewDay(t *testing.T) {
	l := New()
	l.Insert(day(t, "2024-05-01"), amt("100"))

	l.Update(day(t, "2024-05-01"), amt("200"))
	require.Equal(t, 1, l.Len())
	requireAmount(t, "200", l.Balance(day(t, "2024-05-01")))

	l.Update(day(t, "2024-05-02"), amt("300"))
	require.Equal(t, 2, l.Len())
	requireAmount(t, "300", l.Balance(day(t, "2024-05-02")))
	requireAmount(t, "200", l.Balance(day(t, "2024-05-01")))
}

func TestHistoryIsMostRecentFirst(t *testing.T) {
	l := New()
	for _, r := range []struct{ date, amount string }{
		{"2023-04-12", "1200"},
		{"2023-04-10", "800"},
		{"2023-04-16", "900"},
		{"2023-04-11", "1000"},
		{"2023-04-13", "1100"},
		{"2023-04-11", "1001"},
	} {
		l.Insert(day(t, r.date), amt(r.amount))
	}

	history := l.History()
	require.Len(t, history, 5)
	for i := 1; i < len(history); i++ {
		require.Truef(t, history[i-1].Date.After(history[i].Date),
			"%s should be after %s", history[i-1].Date, history[i].Date)
	}

	want := strings.Join([]string{
		"2023-04-16: 900.00",
		"2023-04-13: 1100.00",
		"2023-04-12: 1200.00",
		"2023-04-11: 1001.00",
		"2023-04-10: 800.00",
	}, "\n") + "\n"
	require.Equal(t, want, l.String())
}

func TestEmptyHistoryRendersNothing(t *testing.T) {
	require.Equal(t, "", New().String())
	require.Empty(t, New().History())
}

func TestFromRecordsLaterDuplicateWins(t *testing.T) {
	l := FromRecords([]Record{
		{Date: day(t, "2024-05-01"), Amount: amt("1")},
		{Date: day(t, "2024-05-01").Add(5 * time.Hour), Amount: amt("2")},
	})
	require.Equal(t, 1, l.Len())
	requireAmount(t, "2", l.Balance(day(t, "2024-05-01")))
	require.Empty(t, l.Dirty())
}

func TestDirtyTracksWritesUntilMarkedClean(t *testing.T) {
	l := FromRecords([]Record{{Date: day(t, "2024-05-01"), Amount: amt("10")}})
	l.Update(day(t, "2024-05-03"), amt("30"))
	l.Update(day(t, "2024-05-02"), amt("20"))

	dirty := l.Dirty()
	require.Len(t, dirty, 2)
	require.Equal(t, day(t, "2024-05-02"), dirty[0].Date)
	require.Equal(t, day(t, "2024-05-03"), dirty[1].Date)

	l.MarkClean()
	require.Empty(t, l.Dirty())
	require.Equal(t, 3, l.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	l := New()
	l.Insert(day(t, "2024-05-01"), amt("10"))

	c := l.Clone()
	c.Insert(day(t, "2024-05-01"), amt("99"))
	c.Insert(day(t, "2024-05-02"), amt("5"))

	requireAmount(t, "10", l.Balance(day(t, "2024-05-01")))
	require.Equal(t, 1, l.Len())
	require.Equal(t, 2, c.Len())
}
