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
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/storage"
	"github.com/poiesic/memosync/uploader"
)

// RunOptions tunes a single Run.
type RunOptions struct {
	// Force attempts records still waiting out their back-off.
	// Records at the retry cap are skipped regardless.
	Force bool

	// Progress receives a progress line while the run advances. Optional.
	Progress io.Writer

	// ReportInterval is how often progress is written, in records.
	// Default is 10.
	ReportInterval int
}

// Failure describes one failed attempt of a run.
type Failure struct {
	ID        core.ID
	Err       error
	Permanent bool // The server rejected the record outright
}

// Report summarizes a Run.
type Report struct {
	Pending   int       // Records pending when the run started
	Attempted int       // Uploads actually sent
	Uploaded  int       // Attempts acknowledged by the server
	Failed    int       // Attempts that failed
	Cancelled int       // Attempts abandoned on cancellation
	Deferred  int       // Records still waiting out their back-off
	Vanished  int       // Records deleted while their upload was in flight
	Exhausted []core.ID // Records at the retry cap, left pending
	Failures  []Failure
	Duration  time.Duration
}

// Syncer uploads pending memory records and records the outcome of every
// attempt in the store.
type Syncer struct {
	store    storage.MemoryStore
	uploader uploader.Uploader
	policy   RetryPolicy
	pool     *ants.Pool
	now      func() time.Time
	logger   *slog.Logger

	running  sync.Mutex
	mu       sync.Mutex
	inflight map[core.ID]struct{}
}

// Option configures a Syncer.
type Option func(*Syncer) error

// WithPoolSize sets the number of concurrent upload attempts.
// Default is 1, which uploads strictly oldest first.
func WithPoolSize(size int) Option {
	return func(s *Syncer) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithRetryPolicy sets the retry policy.
// Default is DefaultRetryPolicy().
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(s *Syncer) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		s.policy = policy
		return nil
	}
}

// WithClock overrides the time source used for back-off decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) error {
		s.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a Syncer. Call Release when done.
func New(store storage.MemoryStore, up uploader.Uploader, opts ...Option) (*Syncer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if up == nil {
		return nil, ErrUploaderRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	s := &Syncer{
		store:    store,
		uploader: up,
		policy:   DefaultRetryPolicy(),
		pool:     pool,
		now:      time.Now,
		logger:   slog.Default().With("component", "syncer"),
		inflight: make(map[core.ID]struct{}),
	}
	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}
	return s, nil
}

// Release stops the worker pool.
func (s *Syncer) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Policy returns the retry policy in effect.
func (s *Syncer) Policy() RetryPolicy {
	return s.policy
}

// attemptResult is what one worker reports back to Run.
type attemptResult struct {
	id       core.ID
	outcome  Outcome
	skipped  bool // Another attempt on the same record was in flight
	vanished bool
	settled  bool  // Uploaded by another attempt before this one began
	err      error // Upload error for failed attempts
	fatal    error // Persistence error, aborts the run
}

// Run attempts every eligible pending record once, oldest first.
//
// Upload failures are absorbed into retry counts and listed in the report.
// Run returns an error when the pending list cannot be read, when an outcome
// cannot be persisted, or when ctx is cancelled; the partial report is
// returned alongside.
func (s *Syncer) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	if !s.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.running.Unlock()

	start := time.Now()
	report := &Report{}
	defer func() { report.Duration = time.Since(start) }()

	pending, err := s.store.ListPendingMemories(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list pending memories: %w", err)
	}
	report.Pending = len(pending)

	now := s.now()
	eligible := make([]*core.MemoryRecord, 0, len(pending))
	for _, rec := range pending {
		switch {
		case s.policy.Exhausted(rec):
			report.Exhausted = append(report.Exhausted, rec.Id)
		case !opts.Force && !s.policy.Ready(rec, now):
			report.Deferred++
		default:
			eligible = append(eligible, rec)
		}
	}
	if len(report.Exhausted) > 0 {
		s.logger.Warn("memories reached the retry cap", "count", len(report.Exhausted), "max_retries", s.policy.MaxRetries)
	}
	if len(eligible) == 0 {
		return report, nil
	}

	s.logger.Info("sync started", "eligible", len(eligible), "deferred", report.Deferred, "force", opts.Force)

	var tracker *ProgressTracker
	if opts.Progress != nil {
		interval := opts.ReportInterval
		if interval <= 0 {
			interval = 10
		}
		tracker = NewProgressTracker(opts.Progress, len(eligible), interval)
		tracker.Start()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fatal error
	)
	for _, rec := range eligible {
		if runCtx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			res := s.attempt(runCtx, rec)

			mu.Lock()
			defer mu.Unlock()
			report.add(res)
			if tracker != nil && (res.outcome == OutcomeSucceeded || res.outcome == OutcomeFailed) {
				tracker.Record(res.outcome == OutcomeSucceeded)
			}
			if res.fatal != nil && fatal == nil {
				fatal = res.fatal
				cancel()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if fatal == nil {
				fatal = fmt.Errorf("failed to submit upload: %w", submitErr)
			}
			mu.Unlock()
			cancel()
			break
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}

	s.logger.Info("sync finished",
		"uploaded", report.Uploaded,
		"failed", report.Failed,
		"cancelled", report.Cancelled,
		"exhausted", len(report.Exhausted))

	if fatal != nil {
		return report, fatal
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// UploadOne attempts a single record immediately, ignoring back-off and the
// retry cap. The record after the attempt is returned; a failed upload is
// reported as an error wrapping ErrUploadFailed.
func (s *Syncer) UploadOne(ctx context.Context, id core.ID) (*core.MemoryRecord, error) {
	rec, err := s.store.GetMemory(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Uploaded {
		return rec, ErrAlreadyUploaded
	}

	res := s.attempt(ctx, rec)
	switch {
	case res.skipped:
		return rec, ErrAttemptInProgress
	case res.settled:
		updated, err := s.store.GetMemory(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		return updated, ErrAlreadyUploaded
	case res.vanished:
		return nil, storage.ErrNotFound
	case res.fatal != nil:
		return nil, res.fatal
	case res.outcome == OutcomeCancelled:
		return rec, ctx.Err()
	}

	updated, err := s.store.GetMemory(context.WithoutCancel(ctx), id)
	if err != nil {
		return nil, err
	}
	if res.outcome == OutcomeFailed {
		return updated, fmt.Errorf("%w: %w", ErrUploadFailed, res.err)
	}
	return updated, nil
}

// attempt uploads the record identified by rec and persists the resulting
// transition. The record is re-read once the claim is held, so rec may be a
// stale snapshot.
func (s *Syncer) attempt(ctx context.Context, rec *core.MemoryRecord) attemptResult {
	res := attemptResult{id: rec.Id}
	if !s.claim(rec.Id) {
		res.skipped = true
		return res
	}
	defer s.unclaim(rec.Id)

	if ctx.Err() != nil {
		res.outcome = OutcomeCancelled
		return res
	}

	fresh, err := s.store.GetMemory(ctx, rec.Id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		res.vanished = true
		return res
	case ctx.Err() != nil:
		res.outcome = OutcomeCancelled
		return res
	case err != nil:
		res.fatal = fmt.Errorf("failed to reload memory %d: %w", rec.Id, err)
		return res
	case fresh.Uploaded:
		s.logger.Debug("memory already uploaded", "id", rec.Id)
		res.settled = true
		return res
	}
	rec = fresh

	receipt, upErr := s.uploader.Upload(ctx, rec)
	res.outcome = OutcomeOf(ctx, upErr)
	res.err = upErr

	next := Transition(*rec, res.outcome)
	logger := s.logger.With("id", rec.Id, "outcome", res.outcome)

	// The outcome is known; record it even if ctx is cancelled from here on.
	pctx := context.WithoutCancel(ctx)
	switch {
	case next.Uploaded && !rec.Uploaded:
		err = s.store.MarkUploaded(pctx, rec.Id, receipt.RemoteID)
	case next.RetryCount > rec.RetryCount:
		_, err = s.store.IncrementRetryCount(pctx, rec.Id)
		logger.Debug("upload failed", "retry_count", next.RetryCount, "permanent", uploader.IsPermanent(upErr), "error", upErr)
	default:
		logger.Debug("upload cancelled")
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Info("memory deleted during upload")
		res.vanished = true
	case err != nil:
		res.fatal = fmt.Errorf("failed to record %s attempt for memory %d: %w", res.outcome, rec.Id, err)
	}
	return res
}

func (s *Syncer) claim(id core.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Syncer) unclaim(id core.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

func (r *Report) add(res attemptResult) {
	if res.skipped || res.settled {
		return
	}
	if res.vanished {
		r.Vanished++
	}
	switch res.outcome {
	case OutcomeSucceeded:
		r.Attempted++
		if !res.vanished {
			r.Uploaded++
		}
	case OutcomeFailed:
		r.Attempted++
		r.Failed++
		r.Failures = append(r.Failures, Failure{
			ID:        res.id,
			Err:       res.err,
			Permanent: uploader.IsPermanent(res.err),
		})
	case OutcomeCancelled:
		r.Cancelled++
	}
}
