package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/courtside/internal/dependencies/ids"
)

// MockIDs is a mock implementation of Generator for testing.
// Queued ids are returned first, then "id-1", "id-2", ...
type MockIDs struct {
	mu     sync.Mutex
	queued []string
	next   int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued id, or the next sequential one
func (m *MockIDs) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queued) > 0 {
		id := m.queued[0]
		m.queued = m.queued[1:]
		return id
	}
	m.next++
	return fmt.Sprintf("id-%d", m.next)
}

// Queue adds ids to be returned before sequential ones
func (m *MockIDs) Queue(values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, values...)
}
