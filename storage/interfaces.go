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

package storage

import (
	"context"

	"github.com/poiesic/memosync/core"
)

// MemoryStore persists memory records and their synchronization bookkeeping.
// Implementations must be thread-safe and support concurrent access.
//
// Every mutating method is atomic with respect to a single record: concurrent
// callers never observe a partially applied update.
type MemoryStore interface {
	// GetMemory retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetMemory(ctx context.Context, id core.ID) (*core.MemoryRecord, error)

	// ListMemories returns all records, newest first.
	ListMemories(ctx context.Context) ([]*core.MemoryRecord, error)

	// ListRecentMemories returns up to limit records, newest first.
	// A limit <= 0 yields an empty result.
	ListRecentMemories(ctx context.Context, limit int) ([]*core.MemoryRecord, error)

	// ListPendingMemories returns records not yet uploaded, oldest first.
	// Records created at the same instant are ordered by ascending ID.
	ListPendingMemories(ctx context.Context) ([]*core.MemoryRecord, error)

	// SearchMemories returns records whose title or content contains query,
	// case-insensitively, newest first. A blank query returns all records.
	SearchMemories(ctx context.Context, query string) ([]*core.MemoryRecord, error)

	// AddMemory inserts a new record and returns its assigned ID.
	// The record's Id and UpdatedAt are overwritten; CreatedAt is set if zero.
	AddMemory(ctx context.Context, record *core.MemoryRecord) (core.ID, error)

	// UpdateMemory replaces an existing record.
	// Id and CreatedAt are preserved from the stored copy.
	// Returns ErrNotFound if the record doesn't exist.
	UpdateMemory(ctx context.Context, record *core.MemoryRecord) error

	// DeleteMemory removes a record and its indices.
	// Returns ErrNotFound if the record doesn't exist.
	DeleteMemory(ctx context.Context, id core.ID) error

	// SetUploaded sets the upload flag. Writing the current value is a no-op.
	SetUploaded(ctx context.Context, id core.ID, uploaded bool) error

	// MarkUploaded marks a record uploaded and records the server-assigned ID
	// and the attempt time in one mutation.
	MarkUploaded(ctx context.Context, id core.ID, remoteID string) error

	// IncrementRetryCount adds one failed attempt to a record and stamps
	// LastAttemptAt. Returns the updated record. An uploaded record is
	// returned unchanged.
	IncrementRetryCount(ctx context.Context, id core.ID) (*core.MemoryRecord, error)

	// CountMemories returns the number of stored records.
	CountMemories(ctx context.Context) (int, error)

	// CountPendingMemories returns the number of records not yet uploaded.
	CountPendingMemories(ctx context.Context) (int, error)

	// Subscribe returns a channel that is closed after the next successful
	// mutation. Callers re-subscribe to keep observing.
	Subscribe() <-chan struct{}

	// Close releases the resources held by the store.
	Close() error
}
