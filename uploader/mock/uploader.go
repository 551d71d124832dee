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

package mock

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/uploader"
)

// ErrUploadFailed is the error returned by scripted failures.
var ErrUploadFailed = errors.New("mock upload failed")

// MockUploader is a test double for uploader.Uploader. It is safe for
// concurrent use.
type MockUploader struct {
	// UploadFunc is called by Upload if set.
	// If nil, uploads succeed unless failures were queued with FailNext.
	UploadFunc func(ctx context.Context, record *core.MemoryRecord) (uploader.Receipt, error)

	mu       sync.Mutex
	failNext int
	calls    []core.ID
	nextID   int
}

var _ uploader.Uploader = (*MockUploader)(nil)

// NewMockUploader creates a mock uploader whose uploads succeed.
func NewMockUploader() *MockUploader {
	return &MockUploader{}
}

// Upload records the call and returns the scripted outcome.
func (m *MockUploader) Upload(ctx context.Context, record *core.MemoryRecord) (uploader.Receipt, error) {
	m.mu.Lock()
	m.calls = append(m.calls, record.Id)
	fail := m.failNext > 0
	if fail {
		m.failNext--
	}
	fn := m.UploadFunc
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return uploader.Receipt{}, err
	}
	if fn != nil {
		return fn(ctx, record)
	}
	if fail {
		return uploader.Receipt{}, ErrUploadFailed
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return uploader.Receipt{RemoteID: "remote-" + strconv.Itoa(m.nextID)}, nil
}

// FailNext makes the next n uploads fail with ErrUploadFailed.
// Ignored while UploadFunc is set.
func (m *MockUploader) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
}

// CallCount returns the number of times Upload was called.
func (m *MockUploader) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the IDs of uploaded records in call order.
func (m *MockUploader) Calls() []core.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.ID(nil), m.calls...)
}

// Reset clears recorded calls and scripted behavior.
func (m *MockUploader) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.failNext = 0
	m.nextID = 0
	m.UploadFunc = nil
}
