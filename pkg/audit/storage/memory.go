package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrianCLong/govgate/pkg/audit"
)

// MemoryStorage implements audit.Storage in memory. Intended for tests
// and development; records do not survive a restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*audit.Record
	closed  bool
}

// NewMemoryStorage creates an empty in-memory audit store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends one record.
func (m *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	if err := ctx.Err(); err != nil {
		return audit.NewStorageError("memory", "store", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return audit.NewStorageError("memory", "store", errClosed)
	}

	cp := *record
	cp.ReasonCodes = append([]string(nil), record.ReasonCodes...)
	m.records = append(m.records, &cp)
	return nil
}

// Query returns matching records, newest first.
func (m *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, audit.NewStorageError("memory", "query", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*audit.Record
	for _, rec := range m.records {
		if matches(rec, query) {
			cp := *rec
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if query != nil {
		if query.Offset > 0 {
			if query.Offset >= len(out) {
				return nil, nil
			}
			out = out[query.Offset:]
		}
		if query.Limit > 0 && len(out) > query.Limit {
			out = out[:query.Limit]
		}
	}
	return out, nil
}

// Count returns the number of matching records.
func (m *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, audit.NewStorageError("memory", "count", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, rec := range m.records {
		if matches(rec, query) {
			n++
		}
	}
	return n, nil
}

// DeleteOlderThan removes records older than cutoff.
func (m *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, audit.NewStorageError("memory", "delete", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, rec := range m.records {
		if rec.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return deleted, nil
}

// Close marks the store closed.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func matches(rec *audit.Record, query *audit.Query) bool {
	if query == nil {
		return true
	}
	if query.StartTime != nil && rec.Timestamp.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && rec.Timestamp.After(*query.EndTime) {
		return false
	}
	if query.TenantID != "" && rec.TenantID != query.TenantID {
		return false
	}
	if query.Decision != "" && rec.Decision != query.Decision {
		return false
	}
	if query.BreakGlass != nil && rec.BreakGlass != *query.BreakGlass {
		return false
	}
	return true
}
