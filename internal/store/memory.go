package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps encoded snapshots in process. Used by tests and by the
// server when no database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[snap.SessionID] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	m.mu.RLock()
	b, ok := m.docs[sessionID]
	m.mu.RUnlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.docs, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
