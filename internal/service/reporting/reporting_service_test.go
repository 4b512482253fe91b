package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

type memoryArchive struct {
	saved   []models.MonthlyReport
	saveErr error
}

func (m *memoryArchive) SaveMonthlyReport(_ context.Context, report models.MonthlyReport) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, report)
	return nil
}

func (m *memoryArchive) ListMonthlyReports(_ context.Context, _ int64) ([]models.MonthlyReport, error) {
	return m.saved, nil
}

func newTestService(t *testing.T, archive Archive) *Service {
	svc := NewService(archive, time.UTC, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 18, 0, 0, 0, time.UTC) }
	return svc
}

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		Items: []models.Item{
			{Code: "A", Name: "Bolt", Price: 1, Stock: 2, Min: 3},
			{Code: "B", Stock: 0.5, Min: 1},
			{Code: "C", Name: "Washer", Stock: 40, Min: 10},
		},
		History: []models.HistoryRecord{
			{Code: "A", Qty: 5, Type: models.MovementIn, Timestamp: "2024-05-01 10:00"},
		},
	}
}

func TestItemDetailUsesOneSnapshot(t *testing.T) {
	svc := newTestService(t, nil)
	snap := sampleSnapshot()
	snap.History = append(snap.History,
		models.HistoryRecord{Code: "C", Qty: 1, Type: models.MovementOut, Timestamp: "2024-05-02 09:00"},
		models.HistoryRecord{Code: "A", Qty: 2, Type: models.MovementOut, Timestamp: "2024-05-03 09:00"},
	)

	detail, ok := svc.ItemDetail(snap, "A")
	require.True(t, ok)
	assert.Equal(t, "Bolt", detail.Item.Name)
	require.Len(t, detail.History, 2)
	for _, rec := range detail.History {
		assert.Equal(t, "A", rec.Code)
	}

	// A later snapshot without the item must not be consulted.
	_, ok = svc.ItemDetail(models.Snapshot{History: snap.History}, "A")
	assert.False(t, ok)
}

func TestArchiveMonthlyReport(t *testing.T) {
	archive := &memoryArchive{}
	svc := newTestService(t, archive)

	report, err := svc.ArchiveMonthlyReport(context.Background(), sampleSnapshot())
	require.NoError(t, err)

	assert.Equal(t, "2024-05", report.Month)
	assert.Equal(t, models.PieSplit{In: 5}, report.Pie)
	assert.Len(t, report.LowStock, 2)
	require.Len(t, archive.saved, 1)
	assert.Equal(t, report, archive.saved[0])

	listed, err := svc.ListReports(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestArchiveFailures(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.ArchiveMonthlyReport(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, ErrArchiveDisabled)
	_, err = svc.ListReports(context.Background(), 1)
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	boom := errors.New("boom")
	svc = newTestService(t, &memoryArchive{saveErr: boom})
	_, err = svc.ArchiveMonthlyReport(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, boom)
}

func TestLowStockMessage(t *testing.T) {
	svc := newTestService(t, nil)

	msg, ok := svc.LowStockMessage(sampleSnapshot())
	require.True(t, ok)
	assert.Equal(t, "Low stock (2024-05-20): 2 item(s) to reorder.\n- Bolt [A]: 2 left, min 3\n- B [B]: 0.5 left, min 1", msg)

	_, ok = svc.LowStockMessage(models.Snapshot{Items: []models.Item{{Code: "C", Stock: 40, Min: 10}}})
	assert.False(t, ok)
}
