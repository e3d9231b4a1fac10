package storage

import (
	"context"
	"fmt"
	"sync"

	"ContentMachine/internal/ports"
)

// MemoryStore keeps records in process memory. It backs runs without a
// configured database.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string][]ports.Record
}

var _ ports.Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: map[string][]ports.Record{}}
}

// Insert appends a copy of record with a generated id.
func (m *MemoryStore) Insert(ctx context.Context, table string, record ports.Record) (ports.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	saved := withID(record)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows[table] {
		if row["id"] == saved["id"] {
			return nil, fmt.Errorf("insert %s: duplicate id %v", table, saved["id"])
		}
	}
	m.rows[table] = append(m.rows[table], saved)
	return copyRecord(saved), nil
}

// Rows returns copies of the records in table, in insertion order.
func (m *MemoryStore) Rows(table string) []ports.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ports.Record, len(m.rows[table]))
	for i, row := range m.rows[table] {
		out[i] = copyRecord(row)
	}
	return out
}

func copyRecord(r ports.Record) ports.Record {
	out := make(ports.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
