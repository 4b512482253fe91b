package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/config"
	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// Reloader refreshes the in-memory snapshot.
type Reloader interface {
	Reload(ctx context.Context) (models.Snapshot, error)
}

// ReportArchiver stores the month report for a snapshot.
type ReportArchiver interface {
	ArchiveMonthlyReport(ctx context.Context, snap models.Snapshot) (models.MonthlyReport, error)
}

// Alerter pushes the low-stock alert.
type Alerter interface {
	SendLowStockAlert(ctx context.Context, snap models.Snapshot) (bool, error)
}

// SessionSweeper evicts idle login sessions.
type SessionSweeper interface {
	Sweep() int
	Count() int
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reloader Reloader
	archiver ReportArchiver
	alerter  Alerter
	sessions SessionSweeper
	cfg      config.ReportingConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. alerter and sessions may be nil.
func NewScheduler(cfg config.ReportingConfig, loc *time.Location, reloader Reloader, archiver ReportArchiver, alerter Alerter, sessions SessionSweeper, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	// Standard 5-field cron expressions plus @every/@daily descriptors.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		reloader: reloader,
		archiver: archiver,
		alerter:  alerter,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("reload", s.cfg.ReloadSchedule),
		zap.String("report", s.cfg.CronSchedule))

	if s.cfg.ReloadSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.ReloadSchedule, s.reloadSnapshot); err != nil {
			return fmt.Errorf("schedule reload %q: %w", s.cfg.ReloadSchedule, err)
		}
	}

	if s.cfg.CronSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendMonthlyReport); err != nil {
			return fmt.Errorf("schedule report %q: %w", s.cfg.CronSchedule, err)
		}
	}

	if s.sessions != nil && s.cfg.SessionSweepSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.SessionSweepSchedule, s.sweepSessions); err != nil {
			return fmt.Errorf("schedule session sweep %q: %w", s.cfg.SessionSweepSchedule, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) reloadSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.reloader.Reload(ctx); err != nil {
		s.logger.Error("scheduled reload failed", zap.Error(err))
	}
}

func (s *Scheduler) sweepSessions() {
	if removed := s.sessions.Sweep(); removed > 0 {
		s.logger.Info("expired sessions removed",
			zap.Int("removed", removed),
			zap.Int("open", s.sessions.Count()))
	}
}

func (s *Scheduler) sendMonthlyReport() {
	s.logger.Info("generating monthly report")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	snap, err := s.reloader.Reload(ctx)
	if err != nil {
		s.logger.Error("failed to refresh snapshot for report", zap.Error(err))
		return
	}

	report, err := s.archiver.ArchiveMonthlyReport(ctx, snap)
	switch {
	case errors.Is(err, reporting.ErrArchiveDisabled):
		s.logger.Debug("report archive disabled, skipping")
	case err != nil:
		s.logger.Error("failed to archive monthly report", zap.Error(err))
	default:
		s.logger.Info("monthly report stored", zap.String("month", report.Month))
	}

	if s.alerter == nil {
		return
	}

	sent, err := s.alerter.SendLowStockAlert(ctx, snap)
	if err != nil {
		s.logger.Error("failed to send low stock alert", zap.Error(err))
		return
	}
	if sent {
		s.logger.Info("low stock alert sent successfully")
	}
}
