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

package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/storage"
	"github.com/poiesic/memosync/syncer"
)

// Repository manages memory records and their synchronization.
type Repository struct {
	store      storage.MemoryStore
	syncer     *syncer.Syncer
	maxContent int
	newKey     func() string
	logger     *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository) error

// WithSyncer enables Sync and RetryUpload.
func WithSyncer(s *syncer.Syncer) Option {
	return func(r *Repository) error {
		r.syncer = s
		return nil
	}
}

// WithMaxContentLength sets the content limit enforced by CreateMemory.
// Default is core.MaxContentLength.
func WithMaxContentLength(n int) Option {
	return func(r *Repository) error {
		if n < 1 || n > core.MaxContentLength {
			return fmt.Errorf("max content length must be between 1 and %d, got %d", core.MaxContentLength, n)
		}
		r.maxContent = n
		return nil
	}
}

// WithKeyGenerator overrides the generator of sync idempotency keys.
// Default is a random UUID.
func WithKeyGenerator(fn func() string) Option {
	return func(r *Repository) error {
		r.newKey = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// New creates a Repository over store.
func New(store storage.MemoryStore, opts ...Option) (*Repository, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	r := &Repository{
		store:      store,
		maxContent: core.MaxContentLength,
		newKey:     uuid.NewString,
		logger:     slog.Default().With("component", "repository"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// CreateMemory validates req and stores a new pending record.
// Validation failures are returned as *core.ValidationError.
func (r *Repository) CreateMemory(ctx context.Context, req core.CreateRequest) (*core.MemoryRecord, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := core.ValidateCreateRequest(req, r.maxContent); err != nil {
		return nil, err
	}

	rec := &core.MemoryRecord{
		Title:       req.Title,
		Content:     req.Content,
		ContentHash: core.ContentHash(req.Content),
		SyncKey:     r.newKey(),
	}
	if _, err := r.store.AddMemory(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create memory: %w", err)
	}
	r.logger.Debug("memory created", "id", rec.Id, "words", rec.WordCount())
	return rec, nil
}

// GetMemory returns one record. Unknown ids yield storage.ErrNotFound.
func (r *Repository) GetMemory(ctx context.Context, id core.ID) (*core.MemoryRecord, error) {
	rec, err := r.store.GetMemory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory %d: %w", id, err)
	}
	return rec, nil
}

// GetRecentMemories returns up to limit records, newest first.
func (r *Repository) GetRecentMemories(ctx context.Context, limit int) ([]*core.MemoryRecord, error) {
	records, err := r.store.ListRecentMemories(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent memories: %w", err)
	}
	return records, nil
}

// GetAllMemories returns every record, newest first.
func (r *Repository) GetAllMemories(ctx context.Context) ([]*core.MemoryRecord, error) {
	records, err := r.store.ListMemories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	return records, nil
}

// GetPendingMemories returns the records waiting for upload, oldest first.
func (r *Repository) GetPendingMemories(ctx context.Context) ([]*core.MemoryRecord, error) {
	records, err := r.store.ListPendingMemories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending memories: %w", err)
	}
	return records, nil
}

// SearchMemories returns records matching query, newest first.
// A blank query returns every record.
func (r *Repository) SearchMemories(ctx context.Context, query string) ([]*core.MemoryRecord, error) {
	if strings.TrimSpace(query) == "" {
		return r.GetAllMemories(ctx)
	}
	records, err := r.store.SearchMemories(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search memories: %w", err)
	}
	return records, nil
}

// DeleteMemory removes a record whatever its sync state.
func (r *Repository) DeleteMemory(ctx context.Context, id core.ID) error {
	if err := r.store.DeleteMemory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete memory %d: %w", id, err)
	}
	r.logger.Debug("memory deleted", "id", id)
	return nil
}

// CountMemories returns the number of stored records.
func (r *Repository) CountMemories(ctx context.Context) (int, error) {
	n, err := r.store.CountMemories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return n, nil
}

// Stats summarizes the stored records. Exhausted counts pending records
// at the retry cap of the configured policy.
func (r *Repository) Stats(ctx context.Context) (core.Stats, error) {
	total, err := r.CountMemories(ctx)
	if err != nil {
		return core.Stats{}, err
	}
	pending, err := r.GetPendingMemories(ctx)
	if err != nil {
		return core.Stats{}, err
	}

	policy := syncer.DefaultRetryPolicy()
	if r.syncer != nil {
		policy = r.syncer.Policy()
	}

	stats := core.Stats{Total: total, Pending: len(pending)}
	for _, rec := range pending {
		if policy.Exhausted(rec) {
			stats.Exhausted++
		}
	}
	stats.Uploaded = max(total-stats.Pending, 0)
	return stats, nil
}

// Sync runs one synchronization pass.
func (r *Repository) Sync(ctx context.Context, opts syncer.RunOptions) (*syncer.Report, error) {
	if r.syncer == nil {
		return nil, ErrSyncNotConfigured
	}
	return r.syncer.Run(ctx, opts)
}

// RetryUpload attempts one record immediately, ignoring back-off and the
// retry cap, and returns the record after the attempt.
func (r *Repository) RetryUpload(ctx context.Context, id core.ID) (*core.MemoryRecord, error) {
	if r.syncer == nil {
		return nil, ErrSyncNotConfigured
	}
	return r.syncer.UploadOne(ctx, id)
}
