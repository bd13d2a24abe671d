package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/config"
	"github.com/mamadbah2/shiftpay/internal/service/calendar"
	"github.com/mamadbah2/shiftpay/internal/service/export"
	"github.com/mamadbah2/shiftpay/internal/service/provisioning"
)

const jobTimeout = 2 * time.Minute

// Provisioner runs the weekly provisioning job.
type Provisioner interface {
	ProvisionWeek(ctx context.Context) (provisioning.Summary, error)
}

// Exporter writes a month of payroll somewhere outside the service.
type Exporter interface {
	ExportPayroll(ctx context.Context, year, month int) (export.Result, error)
}

// Notifier delivers a text summary to HR.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Scheduler manages scheduled tasks. Exporter and notifier are optional.
type Scheduler struct {
	cron        *cron.Cron
	cfg         config.SchedulerConfig
	calendar    *calendar.Resolver
	provisioner Provisioner
	exporter    Exporter
	notifier    Notifier
	logger      *zap.Logger
}

// NewScheduler creates a scheduler firing in the resolver's civil timezone.
func NewScheduler(cfg config.SchedulerConfig, resolver *calendar.Resolver, provisioner Provisioner, exporter Exporter, notifier Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(resolver.Location())),
		cfg:         cfg,
		calendar:    resolver,
		provisioner: provisioner,
		exporter:    exporter,
		notifier:    notifier,
		logger:      logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("provision_schedule", s.cfg.ProvisionSchedule),
		zap.String("payroll_export_schedule", s.cfg.PayrollExportSchedule))

	if _, err := s.cron.AddFunc(s.cfg.ProvisionSchedule, s.withTimeout("weekly provisioning", s.runProvisioning)); err != nil {
		return fmt.Errorf("schedule weekly provisioning: %w", err)
	}

	if s.exporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.PayrollExportSchedule, s.withTimeout("payroll export", s.runExport)); err != nil {
			return fmt.Errorf("schedule payroll export: %w", err)
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

func (s *Scheduler) withTimeout(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		started := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled job finished", zap.String("job", name), zap.Duration("duration", time.Since(started)))
	}
}

func (s *Scheduler) runProvisioning(ctx context.Context) error {
	_, err := s.RunProvisioning(ctx)
	return err
}

func (s *Scheduler) runExport(ctx context.Context) error {
	_, err := s.ExportPreviousMonth(ctx)
	return err
}

// RunProvisioning provisions the current week and notifies HR. A failed notification
// is logged and does not fail the run.
func (s *Scheduler) RunProvisioning(ctx context.Context) (provisioning.Summary, error) {
	summary, err := s.provisioner.ProvisionWeek(ctx)
	if err != nil {
		return provisioning.Summary{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, summary.Message()); err != nil {
			s.logger.Warn("failed to send provisioning summary", zap.Error(err))
		}
	}
	return summary, nil
}

// ExportPreviousMonth exports the payroll of the civil month before the current one.
func (s *Scheduler) ExportPreviousMonth(ctx context.Context) (export.Result, error) {
	if s.exporter == nil {
		return export.Result{}, fmt.Errorf("payroll export is not configured")
	}
	now := s.calendar.Now()
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.calendar.Location()).AddDate(0, -1, 0)
	return s.exporter.ExportPayroll(ctx, prev.Year(), int(prev.Month()))
}
