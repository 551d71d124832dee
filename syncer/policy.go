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

package syncer

import (
	"fmt"
	"time"

	"github.com/poiesic/memosync/core"
)

const (
	// DefaultMaxRetries is the number of failed attempts after which a
	// record is no longer attempted automatically.
	DefaultMaxRetries = 10

	// DefaultBaseDelay is the wait after the first failed attempt.
	DefaultBaseDelay = 30 * time.Second

	// DefaultMaxDelay caps the exponential back-off.
	DefaultMaxDelay = time.Hour
)

// RetryPolicy decides when a pending record may be attempted again.
type RetryPolicy struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
}

// Validate checks that the policy is usable.
func (p RetryPolicy) Validate() error {
	if p.MaxRetries < 1 {
		return fmt.Errorf("%w: max retries must be at least 1, got %d", ErrInvalidPolicy, p.MaxRetries)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("%w: base delay cannot be negative", ErrInvalidPolicy)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("%w: max delay %v is below base delay %v", ErrInvalidPolicy, p.MaxDelay, p.BaseDelay)
	}
	return nil
}

// Backoff returns the wait after retryCount failed attempts:
// BaseDelay * 2^(retryCount-1), capped at MaxDelay. No failures, no wait.
func (p RetryPolicy) Backoff(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	delay := p.BaseDelay
	for i := 1; i < retryCount; i++ {
		if delay >= p.MaxDelay || delay <= 0 {
			break
		}
		delay *= 2
	}
	return min(delay, p.MaxDelay)
}

// Exhausted reports whether rec reached the retry cap without being
// uploaded. Exhausted records stay pending but are skipped by Run.
func (p RetryPolicy) Exhausted(rec *core.MemoryRecord) bool {
	return !rec.Uploaded && rec.RetryCount >= p.MaxRetries
}

// NextAttempt returns the earliest time rec may be attempted again.
// The zero time means immediately.
func (p RetryPolicy) NextAttempt(rec *core.MemoryRecord) time.Time {
	if rec.RetryCount == 0 || rec.LastAttemptAt.IsZero() {
		return time.Time{}
	}
	return rec.LastAttemptAt.Add(p.Backoff(rec.RetryCount))
}

// Ready reports whether rec's back-off has elapsed at now.
func (p RetryPolicy) Ready(rec *core.MemoryRecord, now time.Time) bool {
	return !now.Before(p.NextAttempt(rec))
}
