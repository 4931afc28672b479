package app

import (
	"errors"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/dkeye/watchparty/internal/core"
)

var errQueueFull = errors.New("queue full")

type mockConn struct {
	mu       sync.Mutex
	received []core.Frame
	limit    int // 0 means unbounded
	closed   bool
	closes   int
}

func (m *mockConn) TrySend(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return core.ErrConnClosed
	}
	if m.limit > 0 && len(m.received) >= m.limit {
		return errQueueFull
	}
	m.received = append(m.received, f)
	return nil
}

func (m *mockConn) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.closes++
}

func (m *mockConn) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConn) messages() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]any, 0, len(m.received))
	for _, f := range m.received {
		var v map[string]any
		if err := json.Unmarshal(f, &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}
