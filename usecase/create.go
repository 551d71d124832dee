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
	"log/slog"
	"strings"

	"github.com/poiesic/memosync/ai"
	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/repository"
)

// CreateMemoryUseCase stores a new memory, titling it when the user did not.
type CreateMemoryUseCase struct {
	repo     *repository.Repository
	titler   ai.Titler
	titleLen int
	logger   *slog.Logger
}

// CreateOption configures a CreateMemoryUseCase.
type CreateOption func(*CreateMemoryUseCase)

// WithTitler enables generated titles. Without one, titles are derived
// from the content.
func WithTitler(t ai.Titler) CreateOption {
	return func(uc *CreateMemoryUseCase) {
		uc.titler = t
	}
}

// WithTitleLength sets the length of derived titles.
// Default is ai.DefaultTitleLength.
func WithTitleLength(n int) CreateOption {
	return func(uc *CreateMemoryUseCase) {
		if n > 0 && n <= core.MaxTitleLength {
			uc.titleLen = n
		}
	}
}

// NewCreateMemoryUseCase creates the use case.
func NewCreateMemoryUseCase(repo *repository.Repository, opts ...CreateOption) (*CreateMemoryUseCase, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	uc := &CreateMemoryUseCase{
		repo:     repo,
		titleLen: ai.DefaultTitleLength,
		logger:   slog.Default().With("component", "create-memory"),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

// Execute validates req, fills in a missing title and stores the memory.
// Validation failures are returned as *core.ValidationError before any
// title is generated.
func (uc *CreateMemoryUseCase) Execute(ctx context.Context, req core.CreateRequest) (*core.MemoryRecord, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := core.ValidateCreateRequest(req, 0); err != nil {
		return nil, err
	}
	if req.Title == "" {
		req.Title = uc.title(ctx, req.Content)
	}
	return uc.repo.CreateMemory(ctx, req)
}

func (uc *CreateMemoryUseCase) title(ctx context.Context, content string) string {
	if uc.titler != nil {
		title, err := uc.titler.GenerateTitle(ctx, content)
		if err == nil && strings.TrimSpace(title) != "" && core.ValidateTitle(title) == nil {
			return strings.TrimSpace(title)
		}
		uc.logger.Warn("title generation failed, deriving from content", "err", err)
	}
	return core.DeriveTitle(content, uc.titleLen)
}
