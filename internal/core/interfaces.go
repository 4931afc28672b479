package core

import (
	"errors"

	"github.com/dkeye/watchparty/internal/domain"
)

// ErrConnClosed is returned by TrySend once the connection has been closed.
var ErrConnClosed = errors.New("connection closed")

// Frame is one serialized outbound message.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend enqueues without blocking and fails when the connection is
	// closed or its outbound queue is full.
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []domain.ConnID
}
