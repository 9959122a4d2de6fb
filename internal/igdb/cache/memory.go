package cache

import (
	"context"
	"sync"
)

// Memory is an in-memory Store. It backs tests and one-off runs where cache
// persistence across processes is not wanted.
type Memory struct {
	mu      sync.Mutex
	entries map[string]map[int64][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]map[int64][]byte)}
}

func (m *Memory) Get(ctx context.Context, endpoint string, id int64) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.entries[endpoint][id]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

func (m *Memory) GetMany(ctx context.Context, endpoint string, ids []int64) (map[int64][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[int64][]byte)
	byID := m.entries[endpoint]
	for _, id := range ids {
		if payload, ok := byID[id]; ok {
			result[id] = append([]byte(nil), payload...)
		}
	}
	return result, nil
}

func (m *Memory) Put(ctx context.Context, endpoint string, id int64, payload []byte) error {
	return m.PutMany(ctx, endpoint, []Entry{{ID: id, Payload: payload}})
}

func (m *Memory) PutMany(ctx context.Context, endpoint string, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := m.entries[endpoint]
	if byID == nil {
		byID = make(map[int64][]byte)
		m.entries[endpoint] = byID
	}
	for _, entry := range entries {
		byID[entry.ID] = append([]byte(nil), entry.Payload...)
	}
	return nil
}
