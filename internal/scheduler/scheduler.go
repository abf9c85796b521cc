package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/config"
	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/service/ledger"
	"github.com/mamadbah2/mealledger/internal/service/notify"
	"github.com/mamadbah2/mealledger/internal/service/rollup"
)

const jobTimeout = 5 * time.Minute

// Directory lists the organizers a job iterates over.
type Directory interface {
	LoadOrganizers(ctx context.Context) ([]models.Organizer, error)
}

// RollupSource computes month rollups.
type RollupSource interface {
	Monthly(ctx context.Context, organizerID, month string) (rollup.Rollup, error)
}

// BalanceSource computes current stock balances.
type BalanceSource interface {
	Balances(ctx context.Context, organizerID, asOf string) ([]ledger.Balance, error)
}

// Exporter stores finished rollups outside the service.
type Exporter interface {
	ExportRollup(ctx context.Context, r rollup.Rollup, schoolName string) (bool, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.RollupConfig
	dir      Directory
	rollups  RollupSource
	balances BalanceSource
	exporter Exporter
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. exporter may be nil when the
// export is not configured.
func NewScheduler(cfg config.RollupConfig, dir Directory, rollups RollupSource, balances BalanceSource, exporter Exporter, notifier notify.Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone: %w", err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		dir:      dir,
		rollups:  rollups,
		balances: balances,
		exporter: exporter,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("rollup_schedule", s.cfg.CronSchedule),
		zap.String("reconcile_schedule", s.cfg.ReconcileCronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runJob("monthly rollup", s.RunMonthlyRollup)); err != nil {
		return fmt.Errorf("schedule monthly rollup: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.ReconcileCronSchedule, s.runJob("reconciliation", s.RunReconciliation)); err != nil {
		return fmt.Errorf("schedule reconciliation: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runJob(name string, job func(ctx context.Context, now time.Time) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx, s.now()); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
	}
}

// RunMonthlyRollup exports and sends the rollup of the month before now for
// every organizer. A failing organizer is logged and skipped.
func (s *Scheduler) RunMonthlyRollup(ctx context.Context, now time.Time) error {
	organizers, err := s.dir.LoadOrganizers(ctx)
	if err != nil {
		return fmt.Errorf("load organizers: %w", err)
	}

	month := models.PreviousMonth(now)
	failed := 0
	for _, organizer := range organizers {
		r, err := s.rollups.Monthly(ctx, organizer.ID, month)
		if err != nil {
			failed++
			s.logger.Error("failed to compute rollup", zap.String("organizer_id", organizer.ID), zap.String("month", month), zap.Error(err))
			continue
		}

		if s.exporter != nil {
			written, err := s.exporter.ExportRollup(ctx, r, organizer.SchoolName)
			if err != nil {
				failed++
				s.logger.Error("failed to export rollup", zap.String("organizer_id", organizer.ID), zap.String("month", month), zap.Error(err))
			} else if written {
				s.logger.Info("rollup exported", zap.String("organizer_id", organizer.ID), zap.String("month", month))
			}
		}

		if err := s.notifier.SendRollup(ctx, organizer, r); err != nil {
			failed++
			s.logger.Error("failed to send rollup", zap.String("organizer_id", organizer.ID), zap.Error(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("monthly rollup %s: %d step(s) failed across %d organizers", month, failed, len(organizers))
	}
	return nil
}

// RunReconciliation checks every organizer's balances as of now and sends the
// negative ones as warnings.
func (s *Scheduler) RunReconciliation(ctx context.Context, now time.Time) error {
	organizers, err := s.dir.LoadOrganizers(ctx)
	if err != nil {
		return fmt.Errorf("load organizers: %w", err)
	}

	asOf := now.Format(models.DateLayout)
	failed := 0
	for _, organizer := range organizers {
		balances, err := s.balances.Balances(ctx, organizer.ID, asOf)
		if err != nil {
			failed++
			s.logger.Error("failed to compute balances", zap.String("organizer_id", organizer.ID), zap.Error(err))
			continue
		}

		var warnings []models.ReconciliationWarning
		for _, b := range balances {
			if b.Warning != nil {
				warnings = append(warnings, *b.Warning)
			}
		}
		if len(warnings) == 0 {
			continue
		}

		if err := s.notifier.SendWarnings(ctx, organizer, warnings); err != nil {
			failed++
			s.logger.Error("failed to send warnings", zap.String("organizer_id", organizer.ID), zap.Error(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("reconciliation %s: %d organizer(s) failed", asOf, failed)
	}
	return nil
}
