package journal

import (
	"context"
	"sync"
)

// Keys of the persisted collections.
const (
	KeyTrades    = "trades"
	KeyAccounts  = "accounts"
	KeyChecklist = "checklist"
	KeyBalances  = "balances"
)

// Store persists whole JSON documents by key. Load returns nil, nil for a
// key that was never saved.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// MemoryStore is a Store kept in a map. A positive MaxValueBytes makes Save
// fail with ErrQuotaExceeded for larger documents.
type MemoryStore struct {
	mu            sync.RWMutex
	data          map[string][]byte
	MaxValueBytes int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	if m.MaxValueBytes > 0 && len(value) > m.MaxValueBytes {
		return ErrQuotaExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}
