// Package scheduler runs periodic maintenance jobs next to the server.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/ops"
)

// purgeTimeout bounds a single scheduled purge.
const purgeTimeout = time.Minute

// Scheduler purges deleted meals on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	database  *sql.DB
	afterDays int
	logger    *zap.Logger
	enabled   bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a scheduler from cfg. When the purge schedule is "off" the
// scheduler is valid but never runs anything.
func New(database *sql.DB, cfg *config.Config, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	cl := cronLogger{logger.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		database:  database,
		afterDays: cfg.PurgeAfterDays,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}

	if !cfg.PurgeEnabled() {
		return s, nil
	}
	if _, err := s.cron.AddFunc(cfg.PurgeSchedule, s.purge); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid purge_schedule %q: %w", cfg.PurgeSchedule, err)
	}
	s.enabled = true
	return s, nil
}

// Enabled reports whether any job is scheduled.
func (s *Scheduler) Enabled() bool {
	return s.enabled
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	if !s.enabled {
		return
	}
	s.logger.Info("purge scheduler started", zap.Int("purge_after_days", s.afterDays))
	s.cron.Start()
}

// Stop stops scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	if !s.enabled {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunPurge purges meals deleted more than the configured number of days ago.
func (s *Scheduler) RunPurge(ctx context.Context) (*ops.PurgeOutput, error) {
	days := s.afterDays
	return ops.Purge(ctx, s.database, ops.PurgeInput{OlderThanDays: &days})
}

func (s *Scheduler) purge() {
	ctx, cancel := context.WithTimeout(s.ctx, purgeTimeout)
	defer cancel()

	start := time.Now()
	out, err := s.RunPurge(ctx)
	if err != nil {
		s.logger.Error("scheduled purge failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled purge finished",
		zap.Int("purged", out.Purged),
		zap.Duration("duration", time.Since(start)))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
