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


package core

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrInvalidMemory indicates a MemoryRecord or CreateRequest failed validation.
	ErrInvalidMemory = errors.New("invalid memory")

	// ErrEmptyContent indicates the Content field is blank.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrContentTooLong indicates the Content field exceeds MaxContentLength.
	ErrContentTooLong = errors.New("content too long")

	// ErrTitleTooLong indicates the Title field exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title too long")

	// ErrNegativeRetryCount indicates a corrupt retry counter.
	ErrNegativeRetryCount = errors.New("retry count cannot be negative")
)

// ValidationError describes which field violated which constraint.
// It matches both ErrInvalidMemory and the wrapped sentinel with errors.Is.
type ValidationError struct {
	Field      string // e.g. "content"
	Constraint string // e.g. "required", "max_length"
	Err        error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrInvalidMemory, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidMemory, e.Err}
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
