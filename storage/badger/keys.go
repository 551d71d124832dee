package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/memosync/core"
)

// Key prefixes for different data types
const (
	memoryRecordPrefix  = "memrec"
	memoryDatePrefix    = "memdate"
	memoryPendingPrefix = "mempend"
	memoryIDSeq         = "memseq"
)

// makeMemoryKey generates a key for a memory record by ID.
func makeMemoryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", memoryRecordPrefix, id))
}

// makeMemoryDateKey generates a composite key for the creation time index.
// Format: prefix:timestamp:id
func makeMemoryDateKey(createdAt time.Time, id core.ID) []byte {
	return makeTimeIDKey(memoryDatePrefix, createdAt, id)
}

// makeMemoryPendingKey generates a composite key for the pending index.
// The layout matches the date index so a forward scan is oldest-first.
func makeMemoryPendingKey(createdAt time.Time, id core.ID) []byte {
	return makeTimeIDKey(memoryPendingPrefix, createdAt, id)
}

// makeTimeIDKey writes prefix:timestamp:id with both numbers in BigEndian
// order so lexicographic sort matches (time, id) order.
func makeTimeIDKey(prefix string, timestamp time.Time, id core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+16) // 8 bytes for timestamp + 8 bytes for ID
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// indexPrefix returns the iteration prefix of an index.
func indexPrefix(prefix string) []byte {
	return []byte(prefix + ":")
}

// indexUpperBound returns a key sorting after every key of an index,
// used to seek a reverse iterator.
func indexUpperBound(prefix string) []byte {
	buf := indexPrefix(prefix)
	for range 16 {
		buf = append(buf, 0xFF)
	}
	return buf
}
