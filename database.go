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
	"log/slog"

	"github.com/poiesic/memosync/ai"
	"github.com/poiesic/memosync/ai/openai"
	"github.com/poiesic/memosync/prefs"
	"github.com/poiesic/memosync/repository"
	"github.com/poiesic/memosync/storage/badger"
	"github.com/poiesic/memosync/syncer"
	"github.com/poiesic/memosync/uploader"
	"github.com/poiesic/memosync/uploader/rest"
	"github.com/poiesic/memosync/usecase"
)

// Database wires the memory store, the syncer and the use cases together.
type Database struct {
	backend *badger.Backend
	store   *badger.MemoryStore
	syncer  *syncer.Syncer
	repo    *repository.Repository
	titler  ai.Titler
	prefs   *prefs.Preferences
	logger  *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	prefs    *prefs.Preferences
	uploader uploader.Uploader
	titler   ai.Titler
	inMemory bool
}

// WithPreferences sets the preferences. Default is prefs.Default().
func WithPreferences(p *prefs.Preferences) DatabaseOption {
	return func(o *databaseOptions) {
		o.prefs = p
	}
}

// WithUploader replaces the REST uploader built from the preferences.
func WithUploader(u uploader.Uploader) DatabaseOption {
	return func(o *databaseOptions) {
		o.uploader = u
	}
}

// WithTitler replaces the titler built from the preferences.
func WithTitler(t ai.Titler) DatabaseOption {
	return func(o *databaseOptions) {
		o.titler = t
	}
}

// InMemory keeps all data in memory; filePath is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the store at filePath. Sync is available when the
// preferences name a server or an uploader is supplied.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.prefs == nil {
		options.prefs = prefs.Default()
	}
	p := options.prefs
	if err := p.Validate(); err != nil {
		return nil, err
	}

	up := options.uploader
	if up == nil && p.SyncConfigured() {
		client, err := rest.NewClient(p.ServerURL,
			rest.WithTimeout(p.RequestTimeout),
			rest.WithToken(p.APIToken),
		)
		if err != nil {
			return nil, err
		}
		up = client
	}

	titler := options.titler
	if titler == nil {
		if cfg := p.AIConfig(); cfg != nil {
			t, err := openai.NewTitler(cfg)
			if err != nil {
				return nil, err
			}
			titler = t
		}
	}

	if options.inMemory {
		filePath = ""
	}
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewMemoryStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	repoOpts := []repository.Option{}
	var s *syncer.Syncer
	if up != nil {
		s, err = syncer.New(store, up,
			syncer.WithPoolSize(p.Concurrency),
			syncer.WithRetryPolicy(p.Retry),
		)
		if err != nil {
			store.Close()
			backend.Close()
			return nil, err
		}
		repoOpts = append(repoOpts, repository.WithSyncer(s))
	}

	repo, err := repository.New(store, repoOpts...)
	if err != nil {
		if s != nil {
			s.Release()
		}
		store.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend: backend,
		store:   store,
		syncer:  s,
		repo:    repo,
		titler:  titler,
		prefs:   p,
		logger:  slog.Default(),
	}, nil
}

// Close stops the syncer and closes the store and its backend.
func (db *Database) Close() error {
	if db.syncer != nil {
		db.syncer.Release()
	}

	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing memory store", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Repository returns the memory repository.
func (db *Database) Repository() *repository.Repository {
	return db.repo
}

// Preferences returns the preferences in effect.
func (db *Database) Preferences() *prefs.Preferences {
	return db.prefs
}

// SyncEnabled reports whether an uploader is configured.
func (db *Database) SyncEnabled() bool {
	return db.syncer != nil
}

func (db *Database) NewCreateMemoryUseCase() (*usecase.CreateMemoryUseCase, error) {
	var opts []usecase.CreateOption
	if db.titler != nil {
		opts = append(opts, usecase.WithTitler(db.titler))
	}
	return usecase.NewCreateMemoryUseCase(db.repo, opts...)
}

func (db *Database) NewGetMemoriesUseCase() (*usecase.GetMemoriesUseCase, error) {
	return usecase.NewGetMemoriesUseCase(db.repo)
}

func (db *Database) NewDeleteMemoryUseCase() (*usecase.DeleteMemoryUseCase, error) {
	return usecase.NewDeleteMemoryUseCase(db.repo)
}

func (db *Database) NewSyncMemoriesUseCase() (*usecase.SyncMemoriesUseCase, error) {
	return usecase.NewSyncMemoriesUseCase(db.repo, db.prefs)
}

// NewScheduler returns a background scheduler gated by the auto-sync
// preferences for network. It runs on the preference interval and after
// every store mutation.
func (db *Database) NewScheduler(network func() prefs.NetworkStatus, opts ...syncer.SchedulerOption) (*syncer.Scheduler, error) {
	if db.syncer == nil {
		return nil, repository.ErrSyncNotConfigured
	}
	base := []syncer.SchedulerOption{
		syncer.WithInterval(db.prefs.SyncInterval),
		syncer.WithChanges(db.store.Subscribe),
		syncer.WithGate(func() bool {
			return db.prefs.AutoSyncAllowed(network())
		}),
	}
	return syncer.NewScheduler(db.syncer, append(base, opts...)...), nil
}
