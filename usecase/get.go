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
	"strings"

	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/repository"
)

// GetMemoriesUseCase lists memories.
type GetMemoriesUseCase struct {
	repo *repository.Repository
}

// NewGetMemoriesUseCase creates the use case.
func NewGetMemoriesUseCase(repo *repository.Repository) (*GetMemoriesUseCase, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	return &GetMemoriesUseCase{repo: repo}, nil
}

// Recent returns up to limit memories, newest first.
func (uc *GetMemoriesUseCase) Recent(ctx context.Context, limit int) ([]*core.MemoryRecord, error) {
	return uc.repo.GetRecentMemories(ctx, limit)
}

// All returns every memory, newest first.
func (uc *GetMemoriesUseCase) All(ctx context.Context) ([]*core.MemoryRecord, error) {
	return uc.repo.GetAllMemories(ctx)
}

// Search returns the memories matching query. A blank query lists all.
func (uc *GetMemoriesUseCase) Search(ctx context.Context, query string) ([]*core.MemoryRecord, error) {
	if strings.TrimSpace(query) == "" {
		return uc.All(ctx)
	}
	return uc.repo.SearchMemories(ctx, query)
}

// Pending returns the memories waiting for upload, oldest first.
func (uc *GetMemoriesUseCase) Pending(ctx context.Context) ([]*core.MemoryRecord, error) {
	return uc.repo.GetPendingMemories(ctx)
}

// Get returns one memory.
func (uc *GetMemoriesUseCase) Get(ctx context.Context, id core.ID) (*core.MemoryRecord, error) {
	return uc.repo.GetMemory(ctx, id)
}
