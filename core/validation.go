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
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxContentLength is the maximum number of characters in a memory's content.
	MaxContentLength = 10000

	// MaxTitleLength is the maximum number of characters in a memory's title.
	MaxTitleLength = 200
)

// ValidateCreateRequest validates user input for a new memory.
//
// Validation rules:
//   - Content must not be blank
//   - Content must be at most maxContent characters (MaxContentLength if <= 0)
//   - Title must be at most MaxTitleLength characters
func ValidateCreateRequest(req CreateRequest, maxContent int) error {
	if maxContent <= 0 {
		maxContent = MaxContentLength
	}
	if err := ValidateContent(req.Content, maxContent); err != nil {
		return err
	}
	return ValidateTitle(req.Title)
}

// ValidateContent checks the content rules of a memory.
func ValidateContent(content string, maxContent int) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Constraint: "required", Err: ErrEmptyContent}
	}
	if n := utf8.RuneCountInString(content); n > maxContent {
		return &ValidationError{
			Field:      "content",
			Constraint: "max_length",
			Err:        fmt.Errorf("%w: %d > %d characters", ErrContentTooLong, n, maxContent),
		}
	}
	return nil
}

// ValidateTitle checks the optional title of a memory.
func ValidateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return &ValidationError{
			Field:      "title",
			Constraint: "max_length",
			Err:        fmt.Errorf("%w: %d > %d characters", ErrTitleTooLong, n, MaxTitleLength),
		}
	}
	return nil
}

// ValidateMemoryRecord validates a stored MemoryRecord according to domain rules.
//
// NOT validated:
//   - ID (0 is valid before the store assigns one)
//   - Timestamps (assigned by the store)
func ValidateMemoryRecord(record *MemoryRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidMemory)
	}
	if err := ValidateContent(record.Content, MaxContentLength); err != nil {
		return err
	}
	if err := ValidateTitle(record.Title); err != nil {
		return err
	}
	if record.RetryCount < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMemory, ErrNegativeRetryCount)
	}
	return nil
}
