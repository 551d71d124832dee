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
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
)

// ID is a locally assigned identifier for memory records.
// It is generated from a database sequence and is never 0 once stored.
type ID uint64

// ContentHash returns a hex encoded 64-bit BLAKE2b digest of text.
// Identical content always produces the same hash, which lets the server
// detect duplicate uploads.
func ContentHash(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// MemoryRecord is a user-authored note persisted locally and eligible for
// remote synchronization.
type MemoryRecord struct {
	Id            ID
	Title         string    // Optional
	Content       string    // Never blank
	CreatedAt     time.Time // Assigned on insert, immutable
	UpdatedAt     time.Time // Stamped by the store on every mutation
	Uploaded      bool      // True only after the server acknowledged the record
	RetryCount    int       // Failed upload attempts, never decreases
	LastAttemptAt time.Time // Time of the most recent upload attempt outcome
	ContentHash   string    // See ContentHash
	SyncKey       string    // Idempotency key sent with every upload attempt
	RemoteID      string    // Identifier assigned by the server on upload
}

// State returns the synchronization state of the record.
func (m *MemoryRecord) State() SyncState {
	if m.Uploaded {
		return Uploaded()
	}
	return Pending(m.RetryCount)
}

// WordCount returns the number of whitespace separated words in the content.
func (m *MemoryRecord) WordCount() int {
	return len(strings.Fields(m.Content))
}

// Preview returns at most maxLen characters of the content.
// Longer content is cut at a word boundary when one falls in the last 30%
// of the preview, and "..." is appended.
func (m *MemoryRecord) Preview(maxLen int) string {
	return truncateAtWord(m.Content, maxLen)
}

// Clone returns a copy of the record.
func (m *MemoryRecord) Clone() *MemoryRecord {
	c := *m
	return &c
}

// SyncStatus enumerates upload states.
type SyncStatus int

const (
	// StatusPending means the record has not been acknowledged by the server.
	StatusPending SyncStatus = iota + 1
	// StatusUploaded means the server acknowledged the record.
	StatusUploaded
)

func (s SyncStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusUploaded:
		return "uploaded"
	default:
		return fmt.Sprintf("SyncStatus(%d)", int(s))
	}
}

// SyncState is the upload state of a record: Pending(retryCount) or Uploaded.
type SyncState struct {
	Status     SyncStatus
	RetryCount int // Only meaningful for StatusPending
}

// Pending returns the pending state with the given retry count.
func Pending(retryCount int) SyncState {
	return SyncState{Status: StatusPending, RetryCount: retryCount}
}

// Uploaded returns the terminal uploaded state.
func Uploaded() SyncState {
	return SyncState{Status: StatusUploaded}
}

func (s SyncState) String() string {
	if s.Status == StatusPending {
		return fmt.Sprintf("Pending(%d)", s.RetryCount)
	}
	return s.Status.String()
}

// CreateRequest carries the user input for a new memory record.
type CreateRequest struct {
	Title   string
	Content string
}

// Stats summarizes the records held locally.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Uploaded  int `json:"uploaded"`
	Exhausted int `json:"exhausted"` // Pending records that reached the retry cap
}

// DeriveTitle builds a title from content: the first sentence when it is
// shorter than maxLen, otherwise the content truncated at a word boundary.
func DeriveTitle(content string, maxLen int) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "Untitled Memory"
	}

	end := utf8.RuneCountInString(content)
	for i, r := range []rune(content) {
		if r == '.' || r == '!' || r == '?' {
			end = i + 1
			break
		}
	}
	if end < maxLen && end < utf8.RuneCountInString(content) {
		return strings.TrimSpace(string([]rune(content)[:end]))
	}

	title := truncateAtWord(content, maxLen)
	if title == "" {
		return "Untitled Memory"
	}
	return title
}

// truncateAtWord cuts s to at most maxLen runes, "..." included, preferring
// the last space if it falls in the final 30% of the cut.
func truncateAtWord(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return string(runes[:max(maxLen, 0)])
	}
	budget := maxLen - len(ellipsis)
	cut := strings.TrimSpace(string(runes[:budget]))
	cr := []rune(cut)
	if idx := strings.LastIndex(cut, " "); idx != -1 {
		if pos := utf8.RuneCountInString(cut[:idx]); float64(pos) > float64(budget)*0.7 {
			cr = cr[:pos]
		}
	}
	return string(cr) + ellipsis
}

const ellipsis = "..."
