package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/stockdesk/internal/config"
	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

type fakeRepository struct {
	ranges   map[string][][]interface{}
	readErr  error
	writeErr error

	written     [][]interface{}
	writtenInto []string
}

func (f *fakeRepository) AppendRow(_ context.Context, sheetRange string, values []interface{}) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.writtenInto = append(f.writtenInto, sheetRange)
	f.written = append(f.written, values)
	return sheetRange, nil
}

func (f *fakeRepository) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.ranges[sheetRange], nil
}

func testRanges() config.SheetsConfig {
	return config.SheetsConfig{
		ItemsRange:   "Items!A:I",
		UsersRange:   "Users!A:D",
		HistoryRange: "History!A:F",
		StatsRange:   "Stats!A:C",
	}
}

func newTestSource(t *testing.T, repo *fakeRepository) *SnapshotSource {
	src := NewSnapshotSource(repo, testRanges(), time.UTC, zaptest.NewLogger(t))
	src.now = func() time.Time { return time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC) }
	return src
}

func TestListItemsSkipsHeaderAndBlankRows(t *testing.T) {
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		"Items!A:I": {
			{"Code", "Name", "Location", "Price", "Stock", "Min", "LotSize", "Barcode", "Img"},
			{"A1", "Bolt", "Shelf 1", 2.5, float64(10), float64(3), "box", "123", ""},
			{},
			{float64(42), "Nut", "", "1.25", "7"},
		},
	}}

	items, err := newTestSource(t, repo).ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, models.Item{
		Code: "A1", Name: "Bolt", Location: "Shelf 1", Price: 2.5, Stock: 10, Min: 3,
		LotSize: "box", Barcode: "123",
	}, items[0])
	assert.Equal(t, "42", items[1].Code)
	assert.Equal(t, 1.25, items[1].Price)
	assert.Equal(t, float64(7), items[1].Stock)
	assert.Zero(t, items[1].Min)
}

func TestListUsersParsesRoles(t *testing.T) {
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		"Users!A:D": {
			{"u1", "Awa", "admin", float64(1234)},
			{"u2", "Bo", "", "0000"},
		},
	}}

	users, err := newTestSource(t, repo).ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.Equal(t, "1234", users[0].PIN)
	assert.Equal(t, models.RoleUser, users[1].Role)
	assert.Equal(t, "0000", users[1].PIN)
}

func TestListHistoryNumbersSheetRows(t *testing.T) {
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		"History!A:F": {
			{"timestamp", "userId", "code", "qty", "unit", "type"},
			{"2024-05-01 10:00:00", "u1", "A1", float64(2), "pcs", "in"},
			{"2024-05-02 11:00:00", "u2", "A1", float64(1), "pcs", "OUT"},
		},
	}}

	history, err := newTestSource(t, repo).ListHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].RowNumber)
	assert.Equal(t, models.MovementIn, history[0].Type)
	assert.Equal(t, 3, history[1].RowNumber)
	assert.Equal(t, models.MovementOut, history[1].Type)
	assert.Equal(t, float64(2), history[0].Qty)
}

func TestListHistoryHonoursRangeStartRow(t *testing.T) {
	ranges := testRanges()
	ranges.HistoryRange = "History!A2:F"
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		"History!A2:F": {
			{"2024-05-01 10:00:00", "u1", "A1", float64(2), "pcs", "IN"},
			{"2024-05-02 11:00:00", "u2", "A1", float64(1), "pcs", "OUT"},
		},
	}}
	src := NewSnapshotSource(repo, ranges, time.UTC, zaptest.NewLogger(t))

	history, err := src.ListHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].RowNumber)
	assert.Equal(t, 3, history[1].RowNumber)
}

func TestStartRow(t *testing.T) {
	tests := map[string]int{
		"History!A:F":      1,
		"History!A2:F":     2,
		"'My Log'!$B$10:F": 10,
		"A5:C9":            5,
		"History":          1,
		"":                 1,
	}
	for sheetRange, want := range tests {
		assert.Equal(t, want, startRow(sheetRange), sheetRange)
	}
}

func TestMonthlySeriesPassthrough(t *testing.T) {
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		"Stats!A:C": {
			{"month", "in", "out"},
			{"2024-04", float64(5), float64(2)},
			{"2024-05", "3", float64(0)},
		},
	}}

	series, err := newTestSource(t, repo).MonthlySeries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.MonthlySeriesPoint{
		{Month: "2024-04", In: 5, Out: 2},
		{Month: "2024-05", In: 3, Out: 0},
	}, series)
}

func TestItemByCode(t *testing.T) {
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		"Items!A:I": {{"A1", "Bolt"}},
	}}
	src := newTestSource(t, repo)

	item, ok, err := src.ItemByCode(context.Background(), "A1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bolt", item.Name)

	_, ok, err = src.ItemByCode(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadErrorIsWrapped(t *testing.T) {
	repo := &fakeRepository{readErr: errors.New("quota exceeded")}

	_, err := newTestSource(t, repo).ListItems(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Items!A:I")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestLogMovementAppendsHistoryRow(t *testing.T) {
	repo := &fakeRepository{}
	src := newTestSource(t, repo)

	err := src.LogMovement(context.Background(), models.MovementRequest{
		UserID: "u1", Code: "A1", Qty: 2, Unit: "pcs", Type: models.MovementOut,
	})
	require.NoError(t, err)

	require.Len(t, repo.written, 1)
	assert.Equal(t, []string{"History!A:F"}, repo.writtenInto)
	assert.Equal(t, []interface{}{"2024-05-20 09:30:00", "u1", "A1", float64(2), "pcs", "OUT"}, repo.written[0])
}

func TestLogMovementWrapsAppendError(t *testing.T) {
	repo := &fakeRepository{writeErr: errors.New("permission denied")}

	err := newTestSource(t, repo).LogMovement(context.Background(), models.MovementRequest{UserID: "u1", Code: "A1", Qty: 1, Type: models.MovementIn})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestUnsupportedWrites(t *testing.T) {
	src := newTestSource(t, &fakeRepository{})
	ctx := context.Background()

	assert.ErrorIs(t, src.AddItem(ctx, models.Item{Code: "A"}), ErrReadOnlySource)
	assert.ErrorIs(t, src.UpdateItem(ctx, models.Item{Code: "A"}), ErrReadOnlySource)
	assert.ErrorIs(t, src.DeleteItem(ctx, "A"), ErrReadOnlySource)
	assert.ErrorIs(t, src.AddUser(ctx, models.User{ID: "u"}), ErrReadOnlySource)
	assert.ErrorIs(t, src.UpdateHistory(ctx, models.HistoryRecord{RowNumber: 2}), ErrReadOnlySource)
}
