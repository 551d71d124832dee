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
	"github.com/poiesic/memosync/repository"
)

// DeleteMemoryUseCase removes a memory.
type DeleteMemoryUseCase struct {
	repo *repository.Repository
}

// NewDeleteMemoryUseCase creates the use case.
func NewDeleteMemoryUseCase(repo *repository.Repository) (*DeleteMemoryUseCase, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	return &DeleteMemoryUseCase{repo: repo}, nil
}

// Execute deletes the memory with id, uploaded or not.
func (uc *DeleteMemoryUseCase) Execute(ctx context.Context, id core.ID) error {
	return uc.repo.DeleteMemory(ctx, id)
}
