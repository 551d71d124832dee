// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/memosync/storage"
)

// DefaultSyncInterval is how often the scheduler runs a sync on its own.
const DefaultSyncInterval = 15 * time.Minute

// Gate reports whether a sync may run right now, e.g. the device is online
// and auto-sync is enabled.
type Gate func() bool

// Scheduler runs a Syncer when something may have changed: on a periodic
// tick, on an explicit Trigger, and after store mutations. Runs never
// overlap; requests arriving during a run collapse into one follow-up run.
type Scheduler struct {
	syncer   *Syncer
	interval time.Duration
	gate     Gate
	changes  func() <-chan struct{}
	onReport func(*Report, error)
	trigger  chan struct{}
	logger   *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the periodic sync interval.
// Default is DefaultSyncInterval. A non-positive interval disables ticking.
func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.interval = interval
	}
}

// WithGate sets the predicate consulted before every run.
// Default allows every run.
func WithGate(gate Gate) SchedulerOption {
	return func(s *Scheduler) {
		if gate != nil {
			s.gate = gate
		}
	}
}

// WithChanges makes the scheduler run after store mutations.
// Typically store.Subscribe.
func WithChanges(subscribe func() <-chan struct{}) SchedulerOption {
	return func(s *Scheduler) {
		s.changes = subscribe
	}
}

// WithReportHook sets a callback invoked after every run.
func WithReportHook(fn func(*Report, error)) SchedulerOption {
	return func(s *Scheduler) {
		s.onReport = fn
	}
}

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a scheduler driving syncer.
func NewScheduler(syncer *Syncer, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		syncer:   syncer,
		interval: DefaultSyncInterval,
		gate:     func() bool { return true },
		trigger:  make(chan struct{}, 1),
		logger:   slog.Default().With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trigger requests a sync as soon as possible. It never blocks.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run drives the syncer until ctx is done or the store is closed.
// It runs once immediately on start.
func (s *Scheduler) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var changed <-chan struct{}
	if s.changes != nil {
		changed = s.changes()
	}

	s.Trigger()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		case <-s.trigger:
		case <-changed:
			changed = s.changes()
			if s.storeClosed(ctx, changed) {
				return storage.ErrStorageClosed
			}
		}

		if err := s.runOnce(ctx); errors.Is(err, storage.ErrStorageClosed) {
			return err
		}
	}
}

// storeClosed reports whether the store has shut down. A closed store hands
// out change channels that are already closed.
func (s *Scheduler) storeClosed(ctx context.Context, changed <-chan struct{}) bool {
	select {
	case <-changed:
	default:
		return false
	}
	_, err := s.syncer.store.CountPendingMemories(ctx)
	return errors.Is(err, storage.ErrStorageClosed)
}

func (s *Scheduler) runOnce(ctx context.Context) error {
	if !s.gate() {
		s.logger.Debug("sync not allowed now")
		return nil
	}

	report, err := s.syncer.Run(ctx, RunOptions{})
	if errors.Is(err, ErrSyncInProgress) {
		s.logger.Debug("sync skipped, another run is active")
		return nil
	}
	if err != nil && ctx.Err() == nil {
		s.logger.Error("sync failed", "error", err)
	}
	if s.onReport != nil {
		s.onReport(report, err)
	}
	return err
}
