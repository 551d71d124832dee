package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/memosync/core"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		state   core.SyncState
		outcome Outcome
		want    core.SyncState
	}{
		{"pending succeeds", core.Pending(0), OutcomeSucceeded, core.Uploaded()},
		{"pending with retries succeeds", core.Pending(3), OutcomeSucceeded, core.Uploaded()},
		{"pending fails", core.Pending(0), OutcomeFailed, core.Pending(1)},
		{"pending fails again", core.Pending(4), OutcomeFailed, core.Pending(5)},
		{"pending cancelled", core.Pending(2), OutcomeCancelled, core.Pending(2)},
		{"uploaded is terminal on success", core.Uploaded(), OutcomeSucceeded, core.Uploaded()},
		{"uploaded is terminal on failure", core.Uploaded(), OutcomeFailed, core.Uploaded()},
		{"uploaded is terminal on cancel", core.Uploaded(), OutcomeCancelled, core.Uploaded()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := core.MemoryRecord{Id: 1, Content: "buy milk", RetryCount: tt.state.RetryCount}
			rec.Uploaded = tt.state.Status == core.StatusUploaded

			next := Transition(rec, tt.outcome)
			assert.Equal(t, tt.want, next.State())
		})
	}
}

func TestTransition_SuccessKeepsRetryCount(t *testing.T) {
	rec := core.MemoryRecord{Id: 1, Content: "buy milk", RetryCount: 1}

	next := Transition(rec, OutcomeSucceeded)
	assert.True(t, next.Uploaded)
	assert.Equal(t, 1, next.RetryCount)
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	rec := core.MemoryRecord{Id: 1, Content: "buy milk"}

	_ = Transition(rec, OutcomeFailed)
	_ = Transition(rec, OutcomeSucceeded)

	assert.Equal(t, 0, rec.RetryCount)
	assert.False(t, rec.Uploaded)
}

func TestTransition_RepeatedFailuresAreMonotonic(t *testing.T) {
	rec := core.MemoryRecord{Id: 1, Content: "buy milk"}
	for i := 1; i <= 20; i++ {
		rec = Transition(rec, OutcomeFailed)
		assert.Equal(t, i, rec.RetryCount)
		assert.False(t, rec.Uploaded)
	}
}

func TestOutcomeOf(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want Outcome
	}{
		{"nil error", context.Background(), nil, OutcomeSucceeded},
		{"nil error on cancelled context", cancelled, nil, OutcomeSucceeded},
		{"plain error", context.Background(), errors.New("boom"), OutcomeFailed},
		{"error on cancelled context", cancelled, errors.New("boom"), OutcomeCancelled},
		{"wrapped cancellation", context.Background(), fmt.Errorf("request failed: %w", context.Canceled), OutcomeCancelled},
		{"deadline is a failure", context.Background(), context.DeadlineExceeded, OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutcomeOf(tt.ctx, tt.err))
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "succeeded", OutcomeSucceeded.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "cancelled", OutcomeCancelled.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}
