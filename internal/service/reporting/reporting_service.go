package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/directory"
)

// ErrArchiveDisabled is returned when no report archive is configured.
var ErrArchiveDisabled = errors.New("report archive is not configured")

// Archive stores generated month reports.
type Archive interface {
	SaveMonthlyReport(ctx context.Context, report models.MonthlyReport) error
	ListMonthlyReports(ctx context.Context, limit int64) ([]models.MonthlyReport, error)
}

// Service builds dashboard summaries and month reports from a snapshot.
type Service struct {
	archive Archive
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. archive may be nil.
func NewService(archive Archive, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{archive: archive, loc: loc, logger: logger, now: time.Now}
}

// Location is the time zone used for calendar bucketing.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Dashboard summarizes the snapshot as of now.
func (s *Service) Dashboard(snap models.Snapshot) models.DashboardSummary {
	return Summarize(snap, s.now(), s.loc)
}

// MonthMovement returns the this-month movement table.
func (s *Service) MonthMovement(snap models.Snapshot) []models.MovementBucket {
	return ThisMonthMovement(snap.History, snap.Items, s.now(), s.loc)
}

// ItemDetail resolves code and its own history, newest first, from the same snapshot.
func (s *Service) ItemDetail(snap models.Snapshot, code string) (models.ItemDetail, bool) {
	item, ok := directory.FindItem(snap.Items, code)
	if !ok {
		return models.ItemDetail{}, false
	}
	return models.ItemDetail{Item: item, History: ItemHistory(snap.History, item.Code, s.loc)}, true
}

// GenerateMonthlyReport captures the current month's figures.
func (s *Service) GenerateMonthlyReport(snap models.Snapshot) models.MonthlyReport {
	summary := s.Dashboard(snap)
	return models.MonthlyReport{
		Month:       summary.Month,
		Movement:    summary.Movement,
		Pie:         summary.Pie,
		Last30Days:  summary.Last30Days,
		LowStock:    summary.LowStock,
		StockValue:  summary.StockValue,
		GeneratedAt: s.now().UTC(),
	}
}

// ArchiveMonthlyReport generates the month report and stores it.
func (s *Service) ArchiveMonthlyReport(ctx context.Context, snap models.Snapshot) (models.MonthlyReport, error) {
	if s.archive == nil {
		return models.MonthlyReport{}, ErrArchiveDisabled
	}

	report := s.GenerateMonthlyReport(snap)
	if err := s.archive.SaveMonthlyReport(ctx, report); err != nil {
		return models.MonthlyReport{}, fmt.Errorf("archive report %s: %w", report.Month, err)
	}

	s.logger.Info("monthly report archived",
		zap.String("month", report.Month),
		zap.Int("buckets", len(report.Movement)),
		zap.Int("low_stock", len(report.LowStock)))
	return report, nil
}

// ListReports returns archived reports, newest month first.
func (s *Service) ListReports(ctx context.Context, limit int64) ([]models.MonthlyReport, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	reports, err := s.archive.ListMonthlyReports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// LowStockMessage formats a text alert for items at or below their threshold.
// The boolean is false when nothing needs reordering.
func (s *Service) LowStockMessage(snap models.Snapshot) (string, bool) {
	low := LowStock(snap.Items)
	if len(low) == 0 {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Low stock (%s): %d item(s) to reorder.", s.now().In(s.loc).Format(dateLayout), len(low))
	for _, item := range low {
		name := item.Name
		if name == "" {
			name = item.Code
		}
		fmt.Fprintf(&b, "\n- %s [%s]: %s left, min %s", name, item.Code, formatQty(item.Stock), formatQty(item.Min))
	}
	return b.String(), true
}

const dateLayout = "2006-01-02"

func formatQty(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}
