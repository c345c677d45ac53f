package mocks

import "sync"

// MemoryLocal is a map-backed local store for tests.
type MemoryLocal struct {
	mutex sync.Mutex
	data  map[string][]byte

	// FailWrites makes Set return this error, to exercise the non-fatal
	// local-write path.
	FailWrites error
}

func NewMemoryLocal() *MemoryLocal {
	return &MemoryLocal{data: map[string][]byte{}}
}

func (m *MemoryLocal) Get(collection string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	payload, ok := m.data[collection]
	if !ok {
		return nil, nil
	}
	copied := make([]byte, len(payload))
	copy(copied, payload)
	return copied, nil
}

func (m *MemoryLocal) Set(collection string, payload []byte) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	copied := make([]byte, len(payload))
	copy(copied, payload)
	m.data[collection] = copied
	return nil
}

func (m *MemoryLocal) Delete(collection string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.data, collection)
	return nil
}
