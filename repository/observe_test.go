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
	"testing"
	"time"

	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMemories_EmitsAfterMutation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var sizes []int
	for records, err := range f.repo.ObserveMemories(ctx, Query{}) {
		require.NoError(t, err)
		sizes = append(sizes, len(records))
		if len(records) == 0 {
			go func() {
				_, _ = f.repo.CreateMemory(context.Background(), core.CreateRequest{Content: "hello"})
			}()
			continue
		}
		break
	}

	require.NoError(t, ctx.Err(), "timed out waiting for an update")
	assert.Equal(t, 0, sizes[0])
	assert.Equal(t, 1, sizes[len(sizes)-1])
}

func TestObserveMemories_Query(t *testing.T) {
	f := newFixture(t)
	f.create(t, "buy milk")
	f.create(t, "call mom")
	up := f.create(t, "milk the cow")
	require.NoError(t, f.store.MarkUploaded(context.Background(), up.Id, "r"))

	tests := []struct {
		name string
		q    Query
		want int
	}{
		{"all", Query{}, 3},
		{"limit", Query{Limit: 1}, 1},
		{"search", Query{Search: "milk"}, 2},
		{"pending", Query{PendingOnly: true}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for records, err := range f.repo.ObserveMemories(context.Background(), tt.q) {
				require.NoError(t, err)
				assert.Len(t, records, tt.want)
				break
			}
		})
	}
}

func TestObserveMemories_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := 0
	for _, err := range f.repo.ObserveMemories(ctx, Query{}) {
		require.NoError(t, err)
		count++
		cancel()
	}
	assert.Equal(t, 1, count)
}

func TestObserveMemories_StoreClosed(t *testing.T) {
	f := newFixture(t)

	var last error
	count := 0
	for _, err := range f.repo.ObserveMemories(context.Background(), Query{}) {
		count++
		last = err
		if err == nil {
			require.NoError(t, f.store.Close())
		}
	}
	assert.Equal(t, 2, count)
	assert.ErrorIs(t, last, storage.ErrStorageClosed)
}
