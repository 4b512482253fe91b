package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/config"
	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/directory"
)

// ErrReadOnlySource is returned for writes the spreadsheet mirror cannot perform.
var ErrReadOnlySource = errors.New("spreadsheet source is read-only for this operation")

const timestampLayout = "2006-01-02 15:04:05"

// SnapshotSource reads the inventory tables straight from the spreadsheet.
// Column order per tab:
//
//	Items:   code, name, location, price, stock, min, lotSize, barcode, img
//	Users:   id, name, role, pin
//	History: timestamp, userId, code, qty, unit, type
//	Stats:   month, in, out
//
// A first row whose leading cell is the column name is treated as a header.
// Only movement logging is supported as a write; it appends to History and
// leaves stock totals to the sheet's own formulas.
type SnapshotSource struct {
	repo   Repository
	ranges config.SheetsConfig
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewSnapshotSource wires a spreadsheet-backed source over repo.
func NewSnapshotSource(repo Repository, ranges config.SheetsConfig, loc *time.Location, logger *zap.Logger) *SnapshotSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SnapshotSource{repo: repo, ranges: ranges, loc: loc, logger: logger, now: time.Now}
}

// ListItems reads the items tab.
func (s *SnapshotSource) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.read(ctx, s.ranges.ItemsRange, "code")
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(rows))
	for _, r := range rows {
		code := cellString(r.cells, 0)
		if code == "" {
			continue
		}
		items = append(items, models.Item{
			Code:     code,
			Name:     cellString(r.cells, 1),
			Location: cellString(r.cells, 2),
			Price:    cellNumber(r.cells, 3),
			Stock:    cellNumber(r.cells, 4),
			Min:      cellNumber(r.cells, 5),
			LotSize:  cellString(r.cells, 6),
			Barcode:  cellString(r.cells, 7),
			Img:      cellString(r.cells, 8),
		})
	}
	return items, nil
}

// ListUsers reads the users tab.
func (s *SnapshotSource) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.read(ctx, s.ranges.UsersRange, "id")
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	for _, r := range rows {
		id := cellString(r.cells, 0)
		if id == "" {
			continue
		}
		users = append(users, models.User{
			ID:   id,
			Name: cellString(r.cells, 1),
			Role: models.ParseRole(cellString(r.cells, 2)),
			PIN:  cellString(r.cells, 3),
		})
	}
	return users, nil
}

// ListHistory reads the history tab. RowNumber is the sheet row, offset by
// the start row of the configured range.
func (s *SnapshotSource) ListHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	rows, err := s.read(ctx, s.ranges.HistoryRange, "timestamp")
	if err != nil {
		return nil, err
	}

	history := make([]models.HistoryRecord, 0, len(rows))
	for _, r := range rows {
		if len(r.cells) == 0 {
			continue
		}
		mt, ok := models.ParseMovementType(cellString(r.cells, 5))
		if !ok {
			mt = models.MovementType(strings.ToUpper(cellString(r.cells, 5)))
		}
		history = append(history, models.HistoryRecord{
			RowNumber: r.number,
			Timestamp: cellString(r.cells, 0),
			UserID:    cellString(r.cells, 1),
			Code:      cellString(r.cells, 2),
			Qty:       cellNumber(r.cells, 3),
			Unit:      cellString(r.cells, 4),
			Type:      mt,
		})
	}
	return history, nil
}

// MonthlySeries reads the precomputed stats tab as is.
func (s *SnapshotSource) MonthlySeries(ctx context.Context) ([]models.MonthlySeriesPoint, error) {
	rows, err := s.read(ctx, s.ranges.StatsRange, "month")
	if err != nil {
		return nil, err
	}

	series := make([]models.MonthlySeriesPoint, 0, len(rows))
	for _, r := range rows {
		month := cellString(r.cells, 0)
		if month == "" {
			continue
		}
		series = append(series, models.MonthlySeriesPoint{
			Month: month,
			In:    cellNumber(r.cells, 1),
			Out:   cellNumber(r.cells, 2),
		})
	}
	return series, nil
}

// ItemByCode scans the items tab for code.
func (s *SnapshotSource) ItemByCode(ctx context.Context, code string) (models.Item, bool, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return models.Item{}, false, err
	}
	item, ok := directory.FindItem(items, code)
	return item, ok, nil
}

// LogMovement appends a movement row to the history tab.
func (s *SnapshotSource) LogMovement(ctx context.Context, req models.MovementRequest) error {
	values := []interface{}{
		s.now().In(s.loc).Format(timestampLayout),
		req.UserID,
		req.Code,
		req.Qty,
		req.Unit,
		string(req.Type),
	}
	written, err := s.repo.AppendRow(ctx, s.ranges.HistoryRange, values)
	if err != nil {
		return fmt.Errorf("log movement: %w", err)
	}
	s.logger.Info("movement appended",
		zap.String("range", written),
		zap.String("code", req.Code),
		zap.String("type", string(req.Type)))
	return nil
}

// AddItem is not supported on the spreadsheet mirror.
func (s *SnapshotSource) AddItem(context.Context, models.Item) error { return ErrReadOnlySource }

// UpdateItem is not supported on the spreadsheet mirror.
func (s *SnapshotSource) UpdateItem(context.Context, models.Item) error { return ErrReadOnlySource }

// DeleteItem is not supported on the spreadsheet mirror.
func (s *SnapshotSource) DeleteItem(context.Context, string) error { return ErrReadOnlySource }

// AddUser is not supported on the spreadsheet mirror.
func (s *SnapshotSource) AddUser(context.Context, models.User) error { return ErrReadOnlySource }

// UpdateHistory is not supported on the spreadsheet mirror.
func (s *SnapshotSource) UpdateHistory(context.Context, models.HistoryRecord) error {
	return ErrReadOnlySource
}

type sheetRow struct {
	number int
	cells  []interface{}
}

func (s *SnapshotSource) read(ctx context.Context, sheetRange, headerName string) ([]sheetRow, error) {
	values, err := s.repo.ReadRange(ctx, sheetRange)
	if err != nil {
		return nil, fmt.Errorf("load range %s: %w", sheetRange, err)
	}

	first := startRow(sheetRange)
	rows := make([]sheetRow, 0, len(values))
	for i, cells := range values {
		if i == 0 && strings.EqualFold(cellString(cells, 0), headerName) {
			continue
		}
		rows = append(rows, sheetRow{number: first + i, cells: cells})
	}
	return rows, nil
}

// startRow returns the first sheet row covered by an A1 range such as
// "History!A2:F", or 1 when the range names whole columns.
func startRow(sheetRange string) int {
	ref := sheetRange
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		ref = ref[idx+1:]
	}
	if idx := strings.Index(ref, ":"); idx >= 0 {
		ref = ref[:idx]
	}
	digits := strings.TrimLeftFunc(ref, func(r rune) bool {
		return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '$'
	})
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func cellString(cells []interface{}, idx int) string {
	if idx >= len(cells) || cells[idx] == nil {
		return ""
	}
	switch v := cells[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func cellNumber(cells []interface{}, idx int) float64 {
	if idx >= len(cells) {
		return 0
	}
	switch v := cells[idx].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		f, err := strconv.ParseFloat(cellString(cells, idx), 64)
		if err != nil {
			return 0
		}
		return f
	}
}
