package reporting

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

func TestThisMonthMovementExample(t *testing.T) {
	history := []models.HistoryRecord{
		{Code: "A", Qty: 5, Type: models.MovementIn, Timestamp: "2024-05-01 10:00"},
		{Code: "A", Qty: 2, Type: models.MovementOut, Timestamp: "2024-05-02 10:00"},
	}
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	buckets := ThisMonthMovement(history, nil, now, time.UTC)

	require.Len(t, buckets, 1)
	assert.Equal(t, models.MovementBucket{Code: "A", In: 5, Out: 2}, buckets[0])
	assert.Equal(t, models.PieSplit{In: 5, Out: 2}, Pie(buckets))
}

func TestThisMonthMovementWindowAndNames(t *testing.T) {
	items := []models.Item{{Code: "A", Name: "Bolt"}, {Code: "B", Name: "Nut"}, {Code: "A", Name: "Shadowed"}}
	history := []models.HistoryRecord{
		{Code: "A", Qty: 1, Type: models.MovementIn, Timestamp: "2024-05-03 08:00"},
		{Code: "B", Qty: 4, Type: models.MovementOut, Timestamp: "2024-05-04 08:00"},
		{Code: "C", Qty: 2, Type: models.MovementIn, Timestamp: "2024-05-05"},
		{Code: "A", Qty: 50, Type: models.MovementIn, Timestamp: "2024-04-30 23:59"},
		{Code: "B", Qty: 50, Type: models.MovementIn, Timestamp: "not a date"},
		{Code: "B", Qty: 50, Type: models.MovementIn, Timestamp: ""},
		{Code: "A", Qty: 50, Type: "ADJUST", Timestamp: "2024-05-06"},
	}
	now := time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC)

	buckets := ThisMonthMovement(history, items, now, time.UTC)

	assert.Equal(t, []models.MovementBucket{
		{Code: "B", Name: "Nut", Out: 4},
		{Code: "C", Name: "", In: 2},
		{Code: "A", Name: "Bolt", In: 1},
	}, buckets)
}

func TestThisMonthMovementTiesKeepFirstSeenOrder(t *testing.T) {
	history := []models.HistoryRecord{
		{Code: "X", Qty: 3, Type: models.MovementIn, Timestamp: "2024-05-01"},
		{Code: "Y", Qty: 3, Type: models.MovementOut, Timestamp: "2024-05-02"},
		{Code: "Z", Qty: 3, Type: models.MovementIn, Timestamp: "2024-05-03"},
	}
	buckets := ThisMonthMovement(history, nil, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), time.UTC)

	require.Len(t, buckets, 3)
	assert.Equal(t, "X", buckets[0].Code)
	assert.Equal(t, "Y", buckets[1].Code)
	assert.Equal(t, "Z", buckets[2].Code)
}

func randomHistory(r *rand.Rand, base time.Time, n int) []models.HistoryRecord {
	codes := []string{"A", "B", "C", "D"}
	out := make([]models.HistoryRecord, 0, n)
	for i := 0; i < n; i++ {
		ts := ""
		switch r.Intn(10) {
		case 0:
			ts = "garbage"
		case 1:
		default:
			offset := time.Duration(r.Intn(90*24)-60*24) * time.Hour
			ts = base.Add(offset).Format("2006-01-02 15:04")
		}
		typ := models.MovementIn
		if r.Intn(2) == 0 {
			typ = models.MovementOut
		}
		out = append(out, models.HistoryRecord{
			RowNumber: i + 2,
			Code:      codes[r.Intn(len(codes))],
			Qty:       float64(1 + r.Intn(9)),
			Type:      typ,
			Timestamp: ts,
		})
	}
	return out
}

func TestMovementProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	now := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)

	for round := 0; round < 50; round++ {
		t.Run(fmt.Sprintf("round-%d", round), func(t *testing.T) {
			history := randomHistory(r, now, 40)
			buckets := ThisMonthMovement(history, nil, now, time.UTC)

			var inWindow float64
			for _, rec := range history {
				ts, ok := ParseTimestamp(rec.Timestamp, time.UTC)
				if ok && ts.Year() == 2024 && ts.Month() == time.May {
					inWindow += rec.Qty
				}
			}

			pie := Pie(buckets)
			var sumIn, sumOut float64
			for i, b := range buckets {
				sumIn += b.In
				sumOut += b.Out
				if i > 0 {
					assert.GreaterOrEqual(t, buckets[i-1].Total(), b.Total(), "table must be non-increasing")
				}
			}
			assert.Equal(t, inWindow, sumIn+sumOut)
			assert.Equal(t, models.PieSplit{In: sumIn, Out: sumOut}, pie)
		})
	}
}

func TestLast30Count(t *testing.T) {
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	history := []models.HistoryRecord{
		{Timestamp: "2024-05-01 12:00"},
		{Timestamp: "2024-05-01 11:59"},
		{Timestamp: "2024-05-31 12:00"},
		{Timestamp: "2024-05-31 12:01"},
		{Timestamp: "2024-05-15"},
		{Timestamp: "bogus"},
		{Timestamp: ""},
	}

	assert.Equal(t, 3, Last30Count(history, now, time.UTC))
}

func TestLast30CountProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	now := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)

	for round := 0; round < 50; round++ {
		history := randomHistory(r, now, 30)
		want := 0
		for _, rec := range history {
			ts, ok := ParseTimestamp(rec.Timestamp, time.UTC)
			if ok && !ts.Before(now.Add(-30*24*time.Hour)) && !ts.After(now) {
				want++
			}
		}
		assert.Equal(t, want, Last30Count(history, now, time.UTC))
	}
}

func TestItemHistoryNewestFirst(t *testing.T) {
	history := []models.HistoryRecord{
		{RowNumber: 2, Code: "A", Timestamp: "2024-05-01 10:00"},
		{RowNumber: 3, Code: "B", Timestamp: "2024-05-02 10:00"},
		{RowNumber: 4, Code: "A", Timestamp: ""},
		{RowNumber: 5, Code: "A", Timestamp: "2024-05-03 10:00"},
		{RowNumber: 6, Code: "A", Timestamp: "junk"},
	}

	got := ItemHistory(history, "A", time.UTC)

	rows := make([]int, 0, len(got))
	for _, rec := range got {
		rows = append(rows, rec.RowNumber)
	}
	assert.Equal(t, []int{5, 2, 4, 6}, rows)
	assert.Empty(t, ItemHistory(history, "Z", time.UTC))
}

func TestLowStockAndValue(t *testing.T) {
	items := []models.Item{
		{Code: "A", Price: 2.5, Stock: 4, Min: 5},
		{Code: "B", Price: 0.1, Stock: 3, Min: 0},
		{Code: "C", Price: 10, Stock: 1, Min: 1},
	}

	low := LowStock(items)
	require.Len(t, low, 2)
	assert.Equal(t, "A", low[0].Code)
	assert.Equal(t, "C", low[1].Code)
	assert.Equal(t, "20.30", StockValue(items).StringFixed(2))
}

func TestSummarize(t *testing.T) {
	snap := models.Snapshot{
		Items: []models.Item{{Code: "A", Name: "Bolt", Price: 1, Stock: 2, Min: 3}},
		Users: []models.User{{ID: "u1"}},
		History: []models.HistoryRecord{
			{Code: "A", Qty: 5, Type: models.MovementIn, Timestamp: "2024-05-01 10:00"},
			{Code: "A", Qty: 2, Type: models.MovementOut, Timestamp: "2024-05-02 10:00"},
		},
		MonthlySeries: []models.MonthlySeriesPoint{{Month: "2024-04", In: 9, Out: 1}},
	}
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	summary := Summarize(snap, now, time.UTC)

	assert.Equal(t, "2024-05", summary.Month)
	assert.Equal(t, 1, summary.ItemCount)
	assert.Equal(t, 1, summary.UserCount)
	assert.Len(t, summary.LowStock, 1)
	assert.Equal(t, "2.00", summary.StockValue)
	assert.Equal(t, 2, summary.Last30Days)
	assert.Equal(t, models.PieSplit{In: 5, Out: 2}, summary.Pie)
	assert.Equal(t, snap.MonthlySeries, summary.MonthlySeries)
}
