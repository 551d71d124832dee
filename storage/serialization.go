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

package storage

import (
	"fmt"

	"github.com/poiesic/memosync/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalMemoryRecord serializes a MemoryRecord to bytes.
func MarshalMemoryRecord(record *core.MemoryRecord) []byte {
	buf := make([]byte, core.MemoryRecordMUS.Size(*record))
	core.MemoryRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalMemoryRecord deserializes a MemoryRecord from bytes. Timestamps
// are returned in UTC.
func UnmarshalMemoryRecord(data []byte) (*core.MemoryRecord, error) {
	record, _, err := core.MemoryRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: memory record: %w", ErrSerializationFailed, err)
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	record.LastAttemptAt = record.LastAttemptAt.UTC()
	return &record, nil
}
