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
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/storage"
	"github.com/poiesic/memosync/storage/badger"
	"github.com/poiesic/memosync/syncer"
	"github.com/poiesic/memosync/uploader/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	repo     *Repository
	store    *badger.MemoryStore
	uploader *mock.MockUploader
	clock    *testClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	store, backend, err := badger.NewInMemoryStore(badger.WithClock(clock.Now))
	require.NoError(t, err)

	up := mock.NewMockUploader()
	s, err := syncer.New(store, up, syncer.WithClock(clock.Now))
	require.NoError(t, err)

	keys := 0
	opts = append([]Option{
		WithSyncer(s),
		WithKeyGenerator(func() string {
			keys++
			return "key-" + strings.Repeat("x", keys)
		}),
	}, opts...)
	repo, err := New(store, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Release()
		store.Close()
		backend.Close()
	})
	return &fixture{repo: repo, store: store, uploader: up, clock: clock}
}

func (f *fixture) create(t *testing.T, content string) *core.MemoryRecord {
	t.Helper()
	rec, err := f.repo.CreateMemory(context.Background(), core.CreateRequest{Content: content})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return rec
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrStoreRequired)
}

func TestCreateMemory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.repo.CreateMemory(ctx, core.CreateRequest{Title: "  Groceries ", Content: "buy milk"})
	require.NoError(t, err)

	assert.NotZero(t, rec.Id)
	assert.Equal(t, "Groceries", rec.Title)
	assert.Equal(t, "buy milk", rec.Content)
	assert.False(t, rec.Uploaded)
	assert.Equal(t, 0, rec.RetryCount)
	assert.Equal(t, core.ContentHash("buy milk"), rec.ContentHash)
	assert.Equal(t, "key-x", rec.SyncKey)
	assert.Equal(t, core.Pending(0), rec.State())

	stored, err := f.repo.GetMemory(ctx, rec.Id)
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestCreateMemory_Validation(t *testing.T) {
	f := newFixture(t, WithMaxContentLength(10))
	ctx := context.Background()

	tests := []struct {
		name string
		req  core.CreateRequest
		want error
	}{
		{"blank content", core.CreateRequest{Content: "   "}, core.ErrEmptyContent},
		{"long content", core.CreateRequest{Content: "eleven chars"}, core.ErrContentTooLong},
		{"long title", core.CreateRequest{Title: strings.Repeat("t", core.MaxTitleLength+1), Content: "ok"}, core.ErrTitleTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.repo.CreateMemory(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, core.ErrInvalidMemory)
			assert.True(t, core.IsValidationError(err))
		})
	}

	n, err := f.repo.CountMemories(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is stored on validation failure")
}

func TestWithMaxContentLength_Invalid(t *testing.T) {
	store, backend, err := badger.NewInMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	_, err = New(store, WithMaxContentLength(0))
	assert.Error(t, err)
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, "Buy milk")
	second := f.create(t, "call the dentist")
	third := f.create(t, "milk the cow")

	recent, err := f.repo.GetRecentMemories(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, third.Id, recent[0].Id)
	assert.Equal(t, second.Id, recent[1].Id)

	all, err := f.repo.GetAllMemories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := f.repo.SearchMemories(ctx, "MILK")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, third.Id, found[0].Id)
	assert.Equal(t, first.Id, found[1].Id)

	blank, err := f.repo.SearchMemories(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, blank, 3)

	pending, err := f.repo.GetPendingMemories(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, first.Id, pending[0].Id, "pending records are oldest first")
}

func TestDeleteMemory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.create(t, "forget me")

	require.NoError(t, f.repo.DeleteMemory(ctx, rec.Id))

	_, err := f.repo.GetMemory(ctx, rec.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, f.repo.DeleteMemory(ctx, rec.Id), storage.ErrNotFound)
}

func TestSync_FailThenSucceed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.create(t, "buy milk")

	f.uploader.FailNext(1)
	report, err := f.repo.Sync(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	got, err := f.repo.GetMemory(ctx, rec.Id)
	require.NoError(t, err)
	assert.Equal(t, core.Pending(1), got.State())

	f.clock.Advance(syncer.DefaultBaseDelay)
	report, err = f.repo.Sync(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Uploaded)

	got, err = f.repo.GetMemory(ctx, rec.Id)
	require.NoError(t, err)
	assert.True(t, got.Uploaded)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "remote-1", got.RemoteID)

	pending, err := f.repo.GetPendingMemories(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRetryUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.create(t, "buy milk")

	f.uploader.FailNext(1)
	got, err := f.repo.RetryUpload(ctx, rec.Id)
	assert.ErrorIs(t, err, syncer.ErrUploadFailed)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.RetryCount)

	// No back-off wait for a manual retry
	got, err = f.repo.RetryUpload(ctx, rec.Id)
	require.NoError(t, err)
	assert.True(t, got.Uploaded)

	_, err = f.repo.RetryUpload(ctx, rec.Id)
	assert.ErrorIs(t, err, syncer.ErrAlreadyUploaded)
}

func TestSync_NotConfigured(t *testing.T) {
	store, backend, err := badger.NewInMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	repo, err := New(store)
	require.NoError(t, err)

	_, err = repo.Sync(context.Background(), syncer.RunOptions{})
	assert.ErrorIs(t, err, ErrSyncNotConfigured)
	_, err = repo.RetryUpload(context.Background(), 1)
	assert.ErrorIs(t, err, ErrSyncNotConfigured)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uploaded := f.create(t, "one")
	exhausted := f.create(t, "two")
	f.create(t, "three")

	require.NoError(t, f.store.MarkUploaded(ctx, uploaded.Id, "r1"))
	for range syncer.DefaultMaxRetries {
		_, err := f.store.IncrementRetryCount(ctx, exhausted.Id)
		require.NoError(t, err)
	}

	stats, err := f.repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Stats{Total: 3, Pending: 2, Uploaded: 1, Exhausted: 1}, stats)
}

func TestStoreErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	_, err := f.repo.GetAllMemories(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = f.repo.CreateMemory(context.Background(), core.CreateRequest{Content: "late"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
