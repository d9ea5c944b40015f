package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/timewatch/internal/domain"
)

type Store struct {
	mu      sync.RWMutex
	records map[string]domain.ValidationRecord
	puts    int
}

func New() *Store {
	return &Store{records: make(map[string]domain.ValidationRecord)}
}

func (m *Store) Put(ctx context.Context, rec domain.ValidationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.RecordID] = rec
	m.puts++
	return nil
}

func (m *Store) Get(ctx context.Context, id string) (*domain.ValidationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Len is the number of distinct records held.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Puts counts every Put call since New.
func (m *Store) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}
