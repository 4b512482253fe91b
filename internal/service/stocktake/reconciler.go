package stocktake

import (
	"sync"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/directory"
)

// Reconciler keeps the rows of one counting session, newest first.
// Rows are never deduplicated: counting the same code twice yields two rows.
type Reconciler struct {
	mu   sync.RWMutex
	rows []models.StocktakeRow
}

// NewReconciler returns an empty reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// AddRow records a physical count for code against the book stock found in
// items (zero and a blank name for unknown codes) and prepends the row.
func (r *Reconciler) AddRow(items []models.Item, code string, counted float64) models.StocktakeRow {
	item, _ := directory.FindItem(items, code)
	row := models.StocktakeRow{
		Code: code,
		Name: item.Name,
		Book: item.Stock,
		Real: counted,
		Diff: counted - item.Stock,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append([]models.StocktakeRow{row}, r.rows...)
	return row
}

// Rows returns a copy of the current rows.
func (r *Reconciler) Rows() []models.StocktakeRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.StocktakeRow, len(r.rows))
	copy(out, r.rows)
	return out
}

// Reset drops every row.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
}
