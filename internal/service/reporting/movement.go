package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/directory"
)

const last30Window = 30 * 24 * time.Hour

// ThisMonthMovement groups the records of now's calendar month (in loc) by
// item code and sums their IN and OUT quantities. Names come from the item
// table and stay blank for unknown codes. Buckets are ordered by IN+OUT,
// largest first; ties keep first-seen order.
func ThisMonthMovement(history []models.HistoryRecord, items []models.Item, now time.Time, loc *time.Location) []models.MovementBucket {
	key := MonthKey(now, loc)

	index := make(map[string]int)
	buckets := make([]models.MovementBucket, 0)

	for _, rec := range history {
		ts, ok := ParseTimestamp(rec.Timestamp, loc)
		if !ok || MonthKey(ts, loc) != key {
			continue
		}

		mt, ok := models.ParseMovementType(string(rec.Type))
		if !ok {
			continue
		}

		pos, seen := index[rec.Code]
		if !seen {
			pos = len(buckets)
			index[rec.Code] = pos
			buckets = append(buckets, models.MovementBucket{
				Code: rec.Code,
				Name: directory.ItemName(items, rec.Code),
			})
		}

		if mt == models.MovementIn {
			buckets[pos].In += rec.Qty
		} else {
			buckets[pos].Out += rec.Qty
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Total() > buckets[j].Total()
	})

	return buckets
}

// Pie returns the column sums of the movement buckets.
func Pie(buckets []models.MovementBucket) models.PieSplit {
	var split models.PieSplit
	for _, b := range buckets {
		split.In += b.In
		split.Out += b.Out
	}
	return split
}

// Last30Count counts records stamped within [now-30d, now]. Records without a usable timestamp never count.
func Last30Count(history []models.HistoryRecord, now time.Time, loc *time.Location) int {
	from := now.Add(-last30Window)

	count := 0
	for _, rec := range history {
		ts, ok := ParseTimestamp(rec.Timestamp, loc)
		if !ok {
			continue
		}
		if ts.Before(from) || ts.After(now) {
			continue
		}
		count++
	}
	return count
}

// ItemHistory returns the records of one item, newest first. Records whose
// timestamp does not parse go last, in their original order.
func ItemHistory(history []models.HistoryRecord, code string, loc *time.Location) []models.HistoryRecord {
	type stamped struct {
		rec models.HistoryRecord
		ts  time.Time
		ok  bool
	}

	matches := make([]stamped, 0)
	for _, rec := range history {
		if rec.Code != code {
			continue
		}
		ts, ok := ParseTimestamp(rec.Timestamp, loc)
		matches = append(matches, stamped{rec: rec, ts: ts, ok: ok})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ts.After(b.ts)
	})

	out := make([]models.HistoryRecord, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.rec)
	}
	return out
}

// LowStock lists the items at or below their reorder threshold.
func LowStock(items []models.Item) []models.Item {
	out := make([]models.Item, 0)
	for _, item := range items {
		if item.LowStock() {
			out = append(out, item)
		}
	}
	return out
}

// StockValue sums price x stock over every item.
func StockValue(items []models.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromFloat(item.Stock)))
	}
	return total
}

// Summarize builds the dashboard view from a snapshot. The monthly series is passed through untouched.
func Summarize(snap models.Snapshot, now time.Time, loc *time.Location) models.DashboardSummary {
	movement := ThisMonthMovement(snap.History, snap.Items, now, loc)

	series := snap.MonthlySeries
	if series == nil {
		series = []models.MonthlySeriesPoint{}
	}

	return models.DashboardSummary{
		Month:         MonthKey(now, loc),
		ItemCount:     len(snap.Items),
		UserCount:     len(snap.Users),
		LowStock:      LowStock(snap.Items),
		StockValue:    StockValue(snap.Items).StringFixed(2),
		Last30Days:    Last30Count(snap.History, now, loc),
		Movement:      movement,
		Pie:           Pie(movement),
		MonthlySeries: series,
		LoadedAt:      snap.LoadedAt,
	}
}
