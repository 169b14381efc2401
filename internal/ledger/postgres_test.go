package ledger

import (
	"database/sql/driver"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUpsertBatchQueuesOnlyPendingRecords(t *testing.T) {
	l := FromRecords([]Record{
		{Date: day(t, "2024-05-01"), Amount: amt("100")},
		{Date: day(t, "2024-05-04"), Amount: amt("300")},
	})
	require.Empty(t, l.Dirty())

	ApplyCorrection(l, day(t, "2024-05-02"), amt("150.25"), day(t, "2024-05-04"))

	cardID := uuid.New()
	batch := upsertBatch(cardID, l.Dirty())
	require.Equal(t, 3, batch.Len())

	wantDates := []string{"2024-05-02", "2024-05-03", "2024-05-04"}
	wantAmounts := []string{"150.25", "150.25", "350.25"}
	for i, q := range batch.QueuedQueries {
		require.Equal(t, upsertRecord, q.SQL)
		require.Len(t, q.Arguments, 3)
		require.Equal(t, cardID, q.Arguments[0])

		require.Equal(t, day(t, wantDates[i]), q.Arguments[1])

		valuer, ok := q.Arguments[2].(driver.Valuer)
		require.True(t, ok, "amount must be encodable as NUMERIC")
		v, err := valuer.Value()
		require.NoError(t, err)
		require.Equal(t, wantAmounts[i], v)
	}
}

func TestUpsertBatchEmptyWhenClean(t *testing.T) {
	l := FromRecords([]Record{{Date: day(t, "2024-05-01"), Amount: amt("100")}})
	require.Zero(t, upsertBatch(uuid.New(), l.Dirty()).Len())
}
