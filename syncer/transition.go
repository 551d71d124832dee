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
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/memosync/core"
)

// Outcome is the result of one upload attempt.
type Outcome int

const (
	// OutcomeSucceeded means the server acknowledged the record.
	OutcomeSucceeded Outcome = iota + 1
	// OutcomeFailed means the attempt failed for any reason other than
	// cancellation.
	OutcomeFailed
	// OutcomeCancelled means the attempt was abandoned before an outcome
	// was known.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Transition returns the record that results from applying outcome to rec.
//
//	Pending(n) + succeeded -> Uploaded (retry count stays n)
//	Pending(n) + failed    -> Pending(n+1)
//	any        + cancelled -> unchanged
//	Uploaded   + any       -> unchanged
//
// Transition does not stamp timestamps; the store does that on persist.
func Transition(rec core.MemoryRecord, outcome Outcome) core.MemoryRecord {
	if rec.Uploaded {
		return rec
	}
	switch outcome {
	case OutcomeSucceeded:
		rec.Uploaded = true
	case OutcomeFailed:
		rec.RetryCount++
	}
	return rec
}

// OutcomeOf classifies the error returned by an upload attempt made with ctx.
// An error observed after ctx was cancelled is a cancellation, not a failure.
func OutcomeOf(ctx context.Context, err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}
