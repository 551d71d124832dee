package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/poiesic/memosync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSerializationFailed))
}

func TestMarshalUnmarshalMemoryRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name   string
		record *core.MemoryRecord
	}{
		{
			name: "new pending record",
			record: &core.MemoryRecord{
				Id:          1,
				Content:     "buy milk",
				CreatedAt:   now,
				UpdatedAt:   now,
				ContentHash: core.ContentHash("buy milk"),
				SyncKey:     "0b3f4c1e-7a55-4e0e-8c1d-5f7d2b9a6c10",
			},
		},
		{
			name: "record with retries",
			record: &core.MemoryRecord{
				Id:            2,
				Title:         "Passport",
				Content:       "renew passport before august",
				CreatedAt:     now.Add(-48 * time.Hour),
				UpdatedAt:     now,
				RetryCount:    4,
				LastAttemptAt: now.Add(-time.Minute),
			},
		},
		{
			name: "uploaded record",
			record: &core.MemoryRecord{
				Id:            3,
				Content:       "call the dentist",
				CreatedAt:     now,
				UpdatedAt:     now,
				Uploaded:      true,
				RetryCount:    1,
				LastAttemptAt: now,
				RemoteID:      "1234",
			},
		},
		{
			name: "unicode content",
			record: &core.MemoryRecord{
				Id:        4,
				Title:     "日本語",
				Content:   "こんにちは 🌍",
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalMemoryRecord(tt.record)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalMemoryRecord(data)
			require.NoError(t, err)
			assert.Equal(t, tt.record, decoded)
		})
	}
}

func TestUnmarshalMemoryRecord_UTC(t *testing.T) {
	local := time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.FixedZone("UTC+7", 7*3600))
	data := MarshalMemoryRecord(&core.MemoryRecord{Id: 5, Content: "x", CreatedAt: local, UpdatedAt: local})

	decoded, err := UnmarshalMemoryRecord(data)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, decoded.CreatedAt.Location())
	assert.True(t, local.Equal(decoded.CreatedAt))
	assert.True(t, local.Equal(decoded.UpdatedAt))
	assert.True(t, decoded.LastAttemptAt.IsZero())
	assert.Equal(t, time.Time{}, decoded.LastAttemptAt)
}

func TestUnmarshalMemoryRecord_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated data", MarshalMemoryRecord(&core.MemoryRecord{Id: 9, Content: "truncate me please"})[:4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalMemoryRecord(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}
