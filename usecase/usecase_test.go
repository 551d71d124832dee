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

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	aimock "github.com/poiesic/memosync/ai/mock"
	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/prefs"
	"github.com/poiesic/memosync/repository"
	"github.com/poiesic/memosync/storage"
	"github.com/poiesic/memosync/storage/badger"
	"github.com/poiesic/memosync/syncer"
	upmock "github.com/poiesic/memosync/uploader/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo     *repository.Repository
	uploader *upmock.MockUploader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, backend, err := badger.NewInMemoryStore()
	require.NoError(t, err)

	up := upmock.NewMockUploader()
	s, err := syncer.New(store, up)
	require.NoError(t, err)

	repo, err := repository.New(store, repository.WithSyncer(s))
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Release()
		store.Close()
		backend.Close()
	})
	return &fixture{repo: repo, uploader: up}
}

func TestConstructors_RequireRepository(t *testing.T) {
	_, err := NewCreateMemoryUseCase(nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
	_, err = NewGetMemoriesUseCase(nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
	_, err = NewDeleteMemoryUseCase(nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
	_, err = NewSyncMemoriesUseCase(nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestCreateMemory_KeepsUserTitle(t *testing.T) {
	f := newFixture(t)
	titler := aimock.NewMockTitler()
	uc, err := NewCreateMemoryUseCase(f.repo, WithTitler(titler))
	require.NoError(t, err)

	rec, err := uc.Execute(context.Background(), core.CreateRequest{Title: "Shopping", Content: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "Shopping", rec.Title)
	assert.Zero(t, titler.CallCount())
}

func TestCreateMemory_GeneratedTitle(t *testing.T) {
	f := newFixture(t)
	titler := aimock.NewMockTitler()
	uc, err := NewCreateMemoryUseCase(f.repo, WithTitler(titler))
	require.NoError(t, err)

	rec, err := uc.Execute(context.Background(), core.CreateRequest{Content: "pick up the dry cleaning tomorrow"})
	require.NoError(t, err)
	assert.Equal(t, "pick up the", rec.Title)
	assert.Equal(t, 1, titler.CallCount())
}

func TestCreateMemory_TitlerFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	titler := aimock.NewMockTitler()
	titler.GenerateTitleFunc = func(ctx context.Context, content string) (string, error) {
		return "", errors.New("model offline")
	}
	uc, err := NewCreateMemoryUseCase(f.repo, WithTitler(titler))
	require.NoError(t, err)

	rec, err := uc.Execute(context.Background(), core.CreateRequest{Content: "Call the dentist. Ask about Friday."})
	require.NoError(t, err)
	assert.Equal(t, "Call the dentist.", rec.Title)
}

func TestCreateMemory_DerivedTitleWithoutTitler(t *testing.T) {
	f := newFixture(t)
	uc, err := NewCreateMemoryUseCase(f.repo, WithTitleLength(10))
	require.NoError(t, err)

	rec, err := uc.Execute(context.Background(), core.CreateRequest{Content: "renew the passport soon"})
	require.NoError(t, err)
	assert.Equal(t, core.DeriveTitle("renew the passport soon", 10), rec.Title)
}

func TestCreateMemory_DerivedTitleAtMaximumLength(t *testing.T) {
	f := newFixture(t)
	uc, err := NewCreateMemoryUseCase(f.repo, WithTitleLength(core.MaxTitleLength))
	require.NoError(t, err)

	content := strings.Repeat("a", 2*core.MaxTitleLength)
	rec, err := uc.Execute(context.Background(), core.CreateRequest{Content: content})
	require.NoError(t, err)
	assert.Len(t, rec.Title, core.MaxTitleLength)
	assert.True(t, strings.HasSuffix(rec.Title, "..."))
}

func TestCreateMemory_ValidationBeforeTitling(t *testing.T) {
	f := newFixture(t)
	titler := aimock.NewMockTitler()
	uc, err := NewCreateMemoryUseCase(f.repo, WithTitler(titler))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), core.CreateRequest{Content: " \n\t"})
	assert.ErrorIs(t, err, core.ErrEmptyContent)
	assert.True(t, core.IsValidationError(err))

	_, err = uc.Execute(context.Background(), core.CreateRequest{Content: strings.Repeat("a", core.MaxContentLength+1)})
	assert.ErrorIs(t, err, core.ErrContentTooLong)
	assert.Zero(t, titler.CallCount())
}

func TestGetMemories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	create, err := NewCreateMemoryUseCase(f.repo)
	require.NoError(t, err)
	get, err := NewGetMemoriesUseCase(f.repo)
	require.NoError(t, err)

	for _, content := range []string{"buy milk", "call mom", "oat milk is fine too"} {
		_, err := create.Execute(ctx, core.CreateRequest{Content: content})
		require.NoError(t, err)
	}

	recent, err := get.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	all, err := get.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := get.Search(ctx, "milk")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	blank, err := get.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, blank, 3)

	pending, err := get.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	one, err := get.Get(ctx, pending[0].Id)
	require.NoError(t, err)
	assert.Equal(t, pending[0].Content, one.Content)
}

func TestDeleteMemory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	create, err := NewCreateMemoryUseCase(f.repo)
	require.NoError(t, err)
	del, err := NewDeleteMemoryUseCase(f.repo)
	require.NoError(t, err)

	rec, err := create.Execute(ctx, core.CreateRequest{Content: "temporary"})
	require.NoError(t, err)

	require.NoError(t, del.Execute(ctx, rec.Id))
	assert.ErrorIs(t, del.Execute(ctx, rec.Id), storage.ErrNotFound)
}

func TestSyncMemories_Gate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	create, err := NewCreateMemoryUseCase(f.repo)
	require.NoError(t, err)
	rec, err := create.Execute(ctx, core.CreateRequest{Content: "buy milk"})
	require.NoError(t, err)

	p := prefs.Default()
	p.ServerURL = "https://memories.example.com"
	p.WiFiOnly = true
	uc, err := NewSyncMemoriesUseCase(f.repo, p)
	require.NoError(t, err)

	_, err = uc.Execute(ctx, prefs.NetworkMetered, syncer.RunOptions{})
	assert.ErrorIs(t, err, ErrSyncNotAllowed)
	_, err = uc.Retry(ctx, prefs.NetworkOffline, rec.Id)
	assert.ErrorIs(t, err, ErrSyncNotAllowed)
	assert.Zero(t, f.uploader.CallCount())

	report, err := uc.Execute(ctx, prefs.NetworkWiFi, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Uploaded)

	got, err := f.repo.GetMemory(ctx, rec.Id)
	require.NoError(t, err)
	assert.True(t, got.Uploaded)
}

func TestSyncMemories_NoServerConfigured(t *testing.T) {
	f := newFixture(t)
	uc, err := NewSyncMemoriesUseCase(f.repo, nil)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), prefs.NetworkWiFi, syncer.RunOptions{})
	assert.ErrorIs(t, err, ErrSyncNotAllowed)
}
