// Package storage implements the snapshot persistence of the tracker: an
// opaque key-value store holding one JSON blob per collection.
package storage

import (
	"context"
	"sync"
)

// The five top-level snapshot keys. This is the entire persisted-state
// contract.
const (
	KeyCompanyData = "companyData"
	KeyExpenses    = "expenses"
	KeyIncomes     = "incomes"
	KeyEmployees   = "employees"
	KeyProjects    = "projects"
)

// SnapshotKeys lists every key a loader must consider.
var SnapshotKeys = []string{KeyCompanyData, KeyExpenses, KeyIncomes, KeyEmployees, KeyProjects}

// KV is the opaque key-value store the core persists to. Load returns
// (nil, nil) for an absent key; callers default to empty collections.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// MemoryKV is a map-backed store for tests and the default backend.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryKV) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}
