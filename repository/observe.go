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
	"iter"
	"strings"

	"github.com/poiesic/memosync/core"
)

// Query selects the records emitted by ObserveMemories.
type Query struct {
	// Search filters by title or content. Blank means no filter.
	Search string

	// Limit bounds the result to the newest records. Zero means no limit.
	// Ignored when Search or PendingOnly is set.
	Limit int

	// PendingOnly selects records waiting for upload, oldest first.
	PendingOnly bool
}

func (r *Repository) query(ctx context.Context, q Query) ([]*core.MemoryRecord, error) {
	switch {
	case q.PendingOnly:
		return r.GetPendingMemories(ctx)
	case strings.TrimSpace(q.Search) != "":
		return r.SearchMemories(ctx, q.Search)
	case q.Limit > 0:
		return r.GetRecentMemories(ctx, q.Limit)
	default:
		return r.GetAllMemories(ctx)
	}
}

// ObserveMemories returns a sequence of query results. The first result is
// produced immediately and a new one after every store mutation; several
// mutations in quick succession may collapse into one result. Results are
// computed on the consumer's goroutine. The sequence ends when ctx is done,
// when the consumer stops, or after yielding a query error.
func (r *Repository) ObserveMemories(ctx context.Context, q Query) iter.Seq2[[]*core.MemoryRecord, error] {
	return func(yield func([]*core.MemoryRecord, error) bool) {
		for {
			// Subscribe before querying so no mutation slips between the two.
			changed := r.store.Subscribe()

			records, err := r.query(ctx, q)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(records, nil) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
		}
	}
}
