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

package memosync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	aimock "github.com/poiesic/memosync/ai/mock"
	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/prefs"
	"github.com/poiesic/memosync/repository"
	"github.com/poiesic/memosync/syncer"
	upmock "github.com/poiesic/memosync/uploader/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.Repository())
		assert.NotNil(t, db.Preferences())
		assert.NotNil(t, db.backend)
		assert.False(t, db.SyncEnabled(), "no server configured")
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("invalid preferences", func(t *testing.T) {
		p := prefs.Default()
		p.Concurrency = 0
		db, err := NewDatabase("", InMemory(), WithPreferences(p))
		assert.ErrorIs(t, err, prefs.ErrInvalidPreferences)
		assert.Nil(t, db)
	})

	t.Run("server url enables sync", func(t *testing.T) {
		p := prefs.Default()
		p.ServerURL = "https://memories.example.com"
		db, err := NewDatabase("", InMemory(), WithPreferences(p))
		require.NoError(t, err)
		defer db.Close()
		assert.True(t, db.SyncEnabled())
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := NewDatabase(dir)
	require.NoError(t, err)
	rec, err := db.Repository().CreateMemory(ctx, core.CreateRequest{Content: "buy milk"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dir)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Repository().GetMemory(ctx, rec.Id)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Content)
	assert.Equal(t, rec.SyncKey, got.SyncKey)
}

func TestDatabase_UseCases(t *testing.T) {
	p := prefs.Default()
	p.ServerURL = "https://memories.example.com"
	up := upmock.NewMockUploader()
	titler := aimock.NewMockTitler()

	db, err := NewDatabase("", InMemory(), WithPreferences(p), WithUploader(up), WithTitler(titler))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	create, err := db.NewCreateMemoryUseCase()
	require.NoError(t, err)
	rec, err := create.Execute(ctx, core.CreateRequest{Content: "buy milk today"})
	require.NoError(t, err)
	assert.Equal(t, "buy milk today", rec.Title)
	assert.Equal(t, 1, titler.CallCount())

	get, err := db.NewGetMemoriesUseCase()
	require.NoError(t, err)
	all, err := get.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	syncUC, err := db.NewSyncMemoriesUseCase()
	require.NoError(t, err)
	report, err := syncUC.Execute(ctx, prefs.NetworkWiFi, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Uploaded)
	assert.Equal(t, 1, up.CallCount())

	del, err := db.NewDeleteMemoryUseCase()
	require.NoError(t, err)
	require.NoError(t, del.Execute(ctx, rec.Id))
}

func TestDatabase_Scheduler(t *testing.T) {
	t.Run("requires sync", func(t *testing.T) {
		db, err := NewDatabase("", InMemory())
		require.NoError(t, err)
		defer db.Close()

		_, err = db.NewScheduler(func() prefs.NetworkStatus { return prefs.NetworkWiFi })
		assert.ErrorIs(t, err, repository.ErrSyncNotConfigured)
	})

	t.Run("uploads new memories", func(t *testing.T) {
		p := prefs.Default()
		p.ServerURL = "https://memories.example.com"
		up := upmock.NewMockUploader()
		db, err := NewDatabase("", InMemory(), WithPreferences(p), WithUploader(up))
		require.NoError(t, err)
		defer db.Close()

		sched, err := db.NewScheduler(func() prefs.NetworkStatus { return prefs.NetworkWiFi })
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = sched.Run(ctx)
		}()

		rec, err := db.Repository().CreateMemory(context.Background(), core.CreateRequest{Content: "sync me"})
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			got, err := db.Repository().GetMemory(context.Background(), rec.Id)
			return err == nil && got.Uploaded
		}, 5*time.Second, 10*time.Millisecond)

		cancel()
		<-done
	})
}
