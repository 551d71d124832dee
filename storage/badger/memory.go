package badger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/storage"
)

const lockStripes = 64

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *MemoryStore) {
		s.logger = logger
	}
}

// MemoryStore implements storage.MemoryStore for BadgerDB.
//
// Each record is stored under its primary key plus two index entries: a
// creation time index covering every record and a pending index covering
// records not yet uploaded. Both are written in the same transaction as the
// record. Mutations of one record are serialized by a striped lock.
type MemoryStore struct {
	backend *Backend
	idSeq   *badger.Sequence
	locks   [lockStripes]sync.Mutex
	changes *notifier
	closed  atomic.Bool
	now     func() time.Time
	logger  *slog.Logger
}

var _ storage.MemoryStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore over an open backend.
// The backend is owned by the caller and must outlive the store.
func NewMemoryStore(backend *Backend, opts ...StoreOption) (*MemoryStore, error) {
	idSeq, err := backend.GetSequence(memoryIDSeq)
	if err != nil {
		return nil, err
	}

	s := &MemoryStore{
		backend: backend,
		idSeq:   idSeq,
		changes: newNotifier(),
		now:     time.Now,
		logger:  slog.Default().With("component", "memory-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the ID sequence and wakes all subscribers.
func (s *MemoryStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.changes.close()
	return s.idSeq.Release()
}

// Subscribe returns a channel closed after the next successful mutation.
func (s *MemoryStore) Subscribe() <-chan struct{} {
	return s.changes.subscribe()
}

// AddMemory inserts a new record and returns its assigned ID.
func (s *MemoryStore) AddMemory(ctx context.Context, record *core.MemoryRecord) (core.ID, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if err := core.ValidateMemoryRecord(record); err != nil {
		return 0, err
	}

	nextID, err := s.idSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		if nextID, err = s.idSeq.Next(); err != nil {
			return 0, err
		}
	}

	rec := record.Clone()
	rec.Id = core.ID(nextID)
	now := s.stamp()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	} else {
		rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Microsecond)
	}
	rec.UpdatedAt = now
	if rec.ContentHash == "" {
		rec.ContentHash = core.ContentHash(rec.Content)
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		if err := s.writeRecord(tx, nil, rec); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	*record = *rec
	s.changes.notify()
	s.logger.Debug("memory added", "id", rec.Id)
	return rec.Id, nil
}

// UpdateMemory replaces an existing record.
// Id and CreatedAt are kept from the stored copy and the retry counter never
// moves backwards.
func (s *MemoryStore) UpdateMemory(ctx context.Context, record *core.MemoryRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := core.ValidateMemoryRecord(record); err != nil {
		return err
	}

	updated, err := s.mutate(record.Id, func(old *core.MemoryRecord) (*core.MemoryRecord, bool) {
		rec := record.Clone()
		rec.Id = old.Id
		rec.CreatedAt = old.CreatedAt
		rec.RetryCount = max(rec.RetryCount, old.RetryCount)
		if rec.Content != old.Content || rec.ContentHash == "" {
			rec.ContentHash = core.ContentHash(rec.Content)
		}
		return rec, true
	})
	if err != nil {
		return err
	}
	*record = *updated
	return nil
}

// DeleteMemory removes a record and its indices.
func (s *MemoryStore) DeleteMemory(ctx context.Context, id core.ID) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		record, err := s.readRecord(tx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		if err := tx.Delete(makeMemoryDateKey(record.CreatedAt, record.Id)); err != nil {
			return err
		}
		if !record.Uploaded {
			if err := tx.Delete(makeMemoryPendingKey(record.CreatedAt, record.Id)); err != nil {
				return err
			}
		}
		if err := tx.Delete(makeMemoryKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.changes.notify()
	s.logger.Debug("memory deleted", "id", id)
	return nil
}

// SetUploaded sets the upload flag. Writing the current value is a no-op.
func (s *MemoryStore) SetUploaded(ctx context.Context, id core.ID, uploaded bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.mutate(id, func(old *core.MemoryRecord) (*core.MemoryRecord, bool) {
		if old.Uploaded == uploaded {
			return old, false
		}
		rec := old.Clone()
		rec.Uploaded = uploaded
		return rec, true
	})
	return err
}

// MarkUploaded marks a pending record uploaded, recording the server ID and
// the attempt time. An already uploaded record is left untouched.
func (s *MemoryStore) MarkUploaded(ctx context.Context, id core.ID, remoteID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.mutate(id, func(old *core.MemoryRecord) (*core.MemoryRecord, bool) {
		if old.Uploaded {
			return old, false
		}
		rec := old.Clone()
		rec.Uploaded = true
		rec.RemoteID = remoteID
		rec.LastAttemptAt = s.stamp()
		return rec, true
	})
	return err
}

// IncrementRetryCount records one failed upload attempt. An uploaded record
// is returned unchanged.
func (s *MemoryStore) IncrementRetryCount(ctx context.Context, id core.ID) (*core.MemoryRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.mutate(id, func(old *core.MemoryRecord) (*core.MemoryRecord, bool) {
		if old.Uploaded {
			return old, false
		}
		rec := old.Clone()
		rec.RetryCount++
		rec.LastAttemptAt = s.stamp()
		return rec, true
	})
}

// GetMemory retrieves a single record by ID.
func (s *MemoryStore) GetMemory(ctx context.Context, id core.ID) (*core.MemoryRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var result *core.MemoryRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = s.readRecord(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListMemories returns all records, newest first.
func (s *MemoryStore) ListMemories(ctx context.Context) ([]*core.MemoryRecord, error) {
	return s.scanNewest(ctx, 0, nil)
}

// ListRecentMemories returns up to limit records, newest first.
func (s *MemoryStore) ListRecentMemories(ctx context.Context, limit int) ([]*core.MemoryRecord, error) {
	if limit <= 0 {
		return []*core.MemoryRecord{}, nil
	}
	return s.scanNewest(ctx, limit, nil)
}

// SearchMemories returns records whose title or content contains query.
func (s *MemoryStore) SearchMemories(ctx context.Context, query string) ([]*core.MemoryRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListMemories(ctx)
	}
	needle := strings.ToLower(query)
	return s.scanNewest(ctx, 0, func(r *core.MemoryRecord) bool {
		return strings.Contains(strings.ToLower(r.Title), needle) ||
			strings.Contains(strings.ToLower(r.Content), needle)
	})
}

// ListPendingMemories returns records not yet uploaded, oldest first.
func (s *MemoryStore) ListPendingMemories(ctx context.Context) ([]*core.MemoryRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	results := []*core.MemoryRecord{}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := indexPrefix(memoryPendingPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			record, err := s.readIndexed(tx, iter.Item())
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CountMemories returns the number of stored records.
func (s *MemoryStore) CountMemories(ctx context.Context) (int, error) {
	return s.countKeys(ctx, memoryDatePrefix)
}

// CountPendingMemories returns the number of records not yet uploaded.
func (s *MemoryStore) CountPendingMemories(ctx context.Context) (int, error) {
	return s.countKeys(ctx, memoryPendingPrefix)
}

// Helper methods

func (s *MemoryStore) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() || s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

func (s *MemoryStore) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *MemoryStore) lockFor(id core.ID) *sync.Mutex {
	return &s.locks[uint64(id)%lockStripes]
}

// mutate applies fn to the stored copy of a record under the record's lock
// and persists the result in one transaction. When fn reports no change,
// nothing is written and subscribers are not notified.
func (s *MemoryStore) mutate(id core.ID, fn func(old *core.MemoryRecord) (*core.MemoryRecord, bool)) (*core.MemoryRecord, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	var result *core.MemoryRecord
	changed := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		old, err := s.readRecord(tx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		rec, ok := fn(old)
		if !ok {
			result = old
			return nil
		}
		rec.UpdatedAt = s.stamp()
		if err := s.writeRecord(tx, old, rec); err != nil {
			return err
		}
		result, changed = rec, true
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	if changed {
		s.changes.notify()
	}
	return result, nil
}

// writeRecord stores rec and reconciles its index entries against old,
// which is nil for a new record.
func (s *MemoryStore) writeRecord(tx *badger.Txn, old, rec *core.MemoryRecord) error {
	if err := tx.Set(makeMemoryKey(rec.Id), storage.MarshalMemoryRecord(rec)); err != nil {
		return err
	}

	idBytes := storage.MarshalID(rec.Id)
	if old == nil {
		if err := tx.Set(makeMemoryDateKey(rec.CreatedAt, rec.Id), idBytes); err != nil {
			return err
		}
	}

	pendingKey := makeMemoryPendingKey(rec.CreatedAt, rec.Id)
	wasPending := old != nil && !old.Uploaded
	switch {
	case !rec.Uploaded && !wasPending:
		return tx.Set(pendingKey, idBytes)
	case rec.Uploaded && wasPending:
		return tx.Delete(pendingKey)
	}
	return nil
}

// readRecord reads a memory record from the transaction.
// Returns nil without error if the record does not exist.
func (s *MemoryStore) readRecord(tx *badger.Txn, id core.ID) (*core.MemoryRecord, error) {
	item, err := tx.Get(makeMemoryKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.MemoryRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalMemoryRecord(val)
		return unmarshalErr
	})
	return record, err
}

// readIndexed resolves an index entry to its record.
func (s *MemoryStore) readIndexed(tx *badger.Txn, item *badger.Item) (*core.MemoryRecord, error) {
	var recordID core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		recordID, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return s.readRecord(tx, recordID)
}

// scanNewest walks the creation index backwards, keeping records accepted
// by match (all records when match is nil) until limit is reached.
// A limit of 0 means no limit.
func (s *MemoryStore) scanNewest(ctx context.Context, limit int, match func(*core.MemoryRecord) bool) ([]*core.MemoryRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	results := []*core.MemoryRecord{}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := indexPrefix(memoryDatePrefix)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(indexUpperBound(memoryDatePrefix)); iter.ValidForPrefix(prefix); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			record, err := s.readIndexed(tx, iter.Item())
			if err != nil {
				return err
			}
			if record == nil || (match != nil && !match(record)) {
				continue
			}
			results = append(results, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *MemoryStore) countKeys(ctx context.Context, indexName string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := indexPrefix(indexName)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", indexName, err)
	}
	return count, nil
}
