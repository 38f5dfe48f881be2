// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic database maintenance.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// DefaultSchedule runs maintenance every six hours.
const DefaultSchedule = "0 */6 * * *"

// jobTimeout bounds a single maintenance run.
const jobTimeout = 5 * time.Minute

// Maintainer is the storage surface maintenance needs. *store.Store
// satisfies it together with its EventStore.
type Maintainer interface {
	Checkpoint(ctx context.Context) error
	Optimize(ctx context.Context) error
}

// EventPruner deletes old operator events.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config configures the maintenance scheduler.
type Config struct {
	// Schedule is a standard five-field cron spec.
	Schedule string
	// EventRetention is how long operator events are kept. Zero keeps them forever.
	EventRetention time.Duration
	// Now is the clock used for the retention cutoff. Defaults to time.Now.
	Now func() time.Time
}

// Result summarizes one maintenance run.
type Result struct {
	StartedAt    time.Time
	Duration     time.Duration
	EventsPruned int64
	Err          error
}

// Scheduler handles periodic maintenance of the catalog database: WAL
// checkpoints, planner statistics and event log retention.
type Scheduler struct {
	db     Maintainer
	events EventPruner
	cfg    Config
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	last    Result
}

// New creates a new scheduler instance. events may be nil.
func New(db Maintainer, events EventPruner, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		db:     db,
		events: events,
		cfg:    cfg,
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
	}
}

// Start registers the maintenance job and starts the cron loop.
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		_ = s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("scheduling maintenance %q: %w", s.cfg.Schedule, err)
	}

	s.mu.Lock()
	s.entryID = id
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.cfg.Schedule, "next_run", s.NextRun())
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// NextRun returns when maintenance runs next, or the zero time before Start.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	id := s.entryID
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// LastResult returns the outcome of the most recent run.
func (s *Scheduler) LastResult() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RunNow runs every maintenance step once. Steps are independent: a failing
// step is logged and the rest still run. The joined errors are returned.
func (s *Scheduler) RunNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	res := Result{StartedAt: s.cfg.Now()}
	var errs []error

	if err := s.db.Checkpoint(ctx); err != nil {
		s.logger.Error("wal checkpoint failed", "error", err, "category", model.EventCategoryStorage)
		errs = append(errs, err)
	}
	if err := s.db.Optimize(ctx); err != nil {
		s.logger.Error("optimize failed", "error", err, "category", model.EventCategoryStorage)
		errs = append(errs, err)
	}
	if s.events != nil && s.cfg.EventRetention > 0 {
		cutoff := res.StartedAt.Add(-s.cfg.EventRetention)
		n, err := s.events.DeleteEventsBefore(ctx, cutoff)
		if err != nil {
			s.logger.Error("event retention failed", "error", err, "category", model.EventCategoryStorage)
			errs = append(errs, err)
		}
		res.EventsPruned = n
	}

	res.Duration = s.cfg.Now().Sub(res.StartedAt)
	res.Err = errors.Join(errs...)

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	if res.Err == nil {
		s.logger.Info("maintenance completed", "duration", res.Duration, "events_pruned", res.EventsPruned)
	}
	return res.Err
}

// cronLogger routes cron's own messages to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
