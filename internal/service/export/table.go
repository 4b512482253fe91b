// Package export renders snapshot tables as CSV or XLSX downloads.
package export

import (
	"strconv"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

// Table is a header plus rows of string or float64 cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// ItemsTable lists every item.
func ItemsTable(items []models.Item) Table {
	t := Table{
		Name:   "items",
		Header: []string{"code", "name", "location", "price", "stock", "min", "lotSize", "barcode"},
		Rows:   make([][]any, 0, len(items)),
	}
	for _, it := range items {
		t.Rows = append(t.Rows, []any{it.Code, it.Name, it.Location, it.Price, it.Stock, it.Min, it.LotSize, it.Barcode})
	}
	return t
}

// HistoryTable lists movement records in the order given.
func HistoryTable(history []models.HistoryRecord) Table {
	t := Table{
		Name:   "history",
		Header: []string{"rowNumber", "timestamp", "userId", "code", "qty", "unit", "type"},
		Rows:   make([][]any, 0, len(history)),
	}
	for _, h := range history {
		t.Rows = append(t.Rows, []any{float64(h.RowNumber), h.Timestamp, h.UserID, h.Code, h.Qty, h.Unit, string(h.Type)})
	}
	return t
}

// MovementTable lists the per-item IN/OUT buckets.
func MovementTable(buckets []models.MovementBucket) Table {
	t := Table{
		Name:   "movement",
		Header: []string{"code", "name", "in", "out"},
		Rows:   make([][]any, 0, len(buckets)),
	}
	for _, b := range buckets {
		t.Rows = append(t.Rows, []any{b.Code, b.Name, b.In, b.Out})
	}
	return t
}

// StocktakeTable lists counted rows with their variance.
func StocktakeTable(rows []models.StocktakeRow) Table {
	t := Table{
		Name:   "stocktake",
		Header: []string{"code", "name", "book", "real", "diff"},
		Rows:   make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Code, r.Name, r.Book, r.Real, r.Diff})
	}
	return t
}

func formatCell(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return ""
	}
}
