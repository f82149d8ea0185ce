// Package budget meters calls to the secondary (externally hosted, paid)
// routing backend. The counter is shared mutable state: it is constructed
// once per process or deployment and injected into the fallback controller,
// never reached through a package-level singleton.
package budget

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// Raised by Take when the budget window has no capacity left.
type ExhaustedError struct {
	SuggestedWait time.Duration
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("call budget exhausted: retry in %s", e.SuggestedWait)
}

// Budget is a synchronized call counter.
type Budget interface {
	// Take consumes n calls from the current window. Returns *ExhaustedError
	// when fewer than n calls remain.
	Take(ctx context.Context, n int64) error
	// Remaining reports how many calls the current window still allows.
	Remaining(ctx context.Context) (int64, error)
}

// Memory is a process-local budget backed by an atomic counter. Suitable for
// single-instance deployments and tests.
type Memory struct {
	remaining *atomic.Int64
	wait      time.Duration
}

func NewMemory(limit int64, wait time.Duration) *Memory {
	return &Memory{
		remaining: atomic.NewInt64(limit),
		wait:      wait,
	}
}

func (m *Memory) Take(ctx context.Context, n int64) error {
	for {
		cur := m.remaining.Load()
		if cur < n {
			return &ExhaustedError{SuggestedWait: m.wait}
		}
		if m.remaining.CompareAndSwap(cur, cur-n) {
			return nil
		}
	}
}

func (m *Memory) Remaining(ctx context.Context) (int64, error) {
	return m.remaining.Load(), nil
}
