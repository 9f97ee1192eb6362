package store

import "sync"

// MemoryBackend is an in-process Backend used by tests and throwaway
// environments. FailWrites makes every write return an error so callers
// can verify nothing is committed on persistence failure.
type MemoryBackend struct {
	mu         sync.Mutex
	data       map[string][]byte
	FailWrites error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Put(key string, value []byte) error {
	return m.PutAll(map[string][]byte{key: value})
}

func (m *MemoryBackend) PutAll(entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	for key, value := range entries {
		m.data[key] = append([]byte(nil), value...)
	}
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
