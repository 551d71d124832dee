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

	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/prefs"
	"github.com/poiesic/memosync/repository"
	"github.com/poiesic/memosync/syncer"
)

// SyncMemoriesUseCase runs a sync when the preferences allow it.
type SyncMemoriesUseCase struct {
	repo  *repository.Repository
	prefs *prefs.Preferences
}

// NewSyncMemoriesUseCase creates the use case.
func NewSyncMemoriesUseCase(repo *repository.Repository, p *prefs.Preferences) (*SyncMemoriesUseCase, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if p == nil {
		p = prefs.Default()
	}
	return &SyncMemoriesUseCase{repo: repo, prefs: p}, nil
}

// Execute syncs pending memories on network. It returns ErrSyncNotAllowed
// without touching any record when the preferences forbid it.
func (uc *SyncMemoriesUseCase) Execute(ctx context.Context, network prefs.NetworkStatus, opts syncer.RunOptions) (*syncer.Report, error) {
	if !uc.prefs.SyncAllowed(network) {
		return nil, ErrSyncNotAllowed
	}
	return uc.repo.Sync(ctx, opts)
}

// Retry uploads one memory now, ignoring back-off and the retry cap.
func (uc *SyncMemoriesUseCase) Retry(ctx context.Context, network prefs.NetworkStatus, id core.ID) (*core.MemoryRecord, error) {
	if !uc.prefs.SyncAllowed(network) {
		return nil, ErrSyncNotAllowed
	}
	return uc.repo.RetryUpload(ctx, id)
}
