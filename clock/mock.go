package clock

import (
	"sync"
	"time"
)

// MockTime is a controllable TimeProvider for tests and offscreen rendering.
type MockTime struct {
	mu      sync.RWMutex
	current time.Time
}

func NewMockTime(start time.Time) *MockTime {
	return &MockTime{current: start}
}

func (m *MockTime) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *MockTime) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

func (m *MockTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
