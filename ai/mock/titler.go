package mock

import (
	"context"
	"strings"
	"sync/atomic"
)

// MockTitler is a test double for ai.Titler.
// It allows custom behavior injection via a function field.
type MockTitler struct {
	// GenerateTitleFunc is called by GenerateTitle if set.
	// If nil, the first three words of the content are returned.
	GenerateTitleFunc func(ctx context.Context, content string) (string, error)

	callCount atomic.Int64
}

// NewMockTitler creates a mock titler with default deterministic behavior.
func NewMockTitler() *MockTitler {
	return &MockTitler{}
}

// GenerateTitle returns a deterministic title for content.
func (m *MockTitler) GenerateTitle(ctx context.Context, content string) (string, error) {
	m.callCount.Add(1)

	if m.GenerateTitleFunc != nil {
		return m.GenerateTitleFunc(ctx, content)
	}

	words := strings.Fields(content)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " "), nil
}

// CallCount returns the number of times GenerateTitle was called.
func (m *MockTitler) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and the injected behavior.
func (m *MockTitler) Reset() {
	m.callCount.Store(0)
	m.GenerateTitleFunc = nil
}
