// Package backup writes scheduled CSV snapshots of the record store into
// the exports directory.
package backup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/burnerhq/burner/internal/config"
	"github.com/burnerhq/burner/internal/ops"
	"github.com/burnerhq/burner/internal/records"
)

// Scheduler runs CSV backups on the configured cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	store  *records.Store
	cfg    *config.Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler for cfg.BackupSchedule. It returns nil, nil when
// no schedule is configured.
func New(store *records.Store, cfg *config.Config, logger *slog.Logger) (*Scheduler, error) {
	if cfg.BackupSchedule == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(store.Location())),
		store:  store,
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(cfg.BackupSchedule, func() {
		_, _ = s.RunOnce(s.ctx)
	}); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid backup schedule %q: %w", cfg.BackupSchedule, err)
	}
	return s, nil
}

// Start begins running scheduled backups in the background.
func (s *Scheduler) Start() {
	s.logger.Info("backup scheduler started", "schedule", s.cfg.BackupSchedule)
	s.cron.Start()
}

// Stop halts scheduling and waits for a running backup to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.logger.Info("backup scheduler stopped")
}

// RunOnce writes one snapshot to the default export path.
func (s *Scheduler) RunOnce(ctx context.Context) (*ops.ExportOutput, error) {
	out, err := ops.Export(ctx, s.store, s.cfg, ops.ExportInput{})
	if err != nil {
		s.logger.Error("backup failed", "error", err)
		return nil, err
	}
	s.logger.Info("backup written", "path", out.Path, "count", out.Count)
	return out, nil
}
