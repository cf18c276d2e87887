package kv

import (
	"context"
	"sync"
)

// Memory is a map-backed KV. Read and write failures can be injected to
// exercise callers' error handling.
type Memory struct {
	mu        sync.RWMutex
	data      map[string][]byte
	readErr   error
	writeErr  error
	writes    int
	closeOnce sync.Once
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// FailReads makes every subsequent Get return err. A nil err restores normal reads.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// FailWrites makes every subsequent Set and Delete return err.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// Writes returns the number of successful Set calls.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.readErr != nil {
		return nil, m.readErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	m.writes++
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Close drops all data.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.data = make(map[string][]byte)
		m.mu.Unlock()
	})
	return nil
}
