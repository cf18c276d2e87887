// Package likes tracks which posts the current browsing session has liked.
// The set is ephemeral and independent of the durable post counters.
package likes

import (
	"context"
	"sync"
)

// Tracker is the browsing-session like set. Implementations are fail-soft:
// a backend failure reads as "not liked" and drops the write.
type Tracker interface {
	Has(ctx context.Context, postID string) bool
	Add(ctx context.Context, postID string)
	Remove(ctx context.Context, postID string)
	Clear(ctx context.Context)
}

// Memory keeps the set for the lifetime of the process.
type Memory struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewMemory creates an empty in-process tracker.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

func (m *Memory) Has(_ context.Context, postID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ids[postID]
	return ok
}

func (m *Memory) Add(_ context.Context, postID string) {
	m.mu.Lock()
	m.ids[postID] = struct{}{}
	m.mu.Unlock()
}

func (m *Memory) Remove(_ context.Context, postID string) {
	m.mu.Lock()
	delete(m.ids, postID)
	m.mu.Unlock()
}

func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	m.ids = make(map[string]struct{})
	m.mu.Unlock()
}

// Len returns the number of liked posts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}
