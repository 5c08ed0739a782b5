package scheduler

import (
	"sync"
	"time"

	"liyu1981.xyz/vessel-resource-service/pkg/engine"
)

const budgetWindow = time.Minute

// WriteBudget caps durable scheduler writes per fixed one-minute window. The window restarts on
// the first request after it expires. A limit of zero or less never defers.
type WriteBudget struct {
	mu          sync.Mutex
	clock       engine.Clock
	limit       int
	used        int
	windowStart time.Time
}

func NewWriteBudget(limit int, clock engine.Clock) *WriteBudget {
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return &WriteBudget{limit: limit, clock: clock}
}

// Take reports whether one more write fits in the current window and counts it if so.
func (b *WriteBudget) Take() bool {
	if b == nil || b.limit <= 0 {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()
	if b.windowStart.IsZero() || now.Sub(b.windowStart) >= budgetWindow {
		b.windowStart = now
		b.used = 0
	}
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

func (b *WriteBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.windowStart.IsZero() || b.clock.Now().Sub(b.windowStart) >= budgetWindow {
		return b.limit
	}
	return max(b.limit-b.used, 0)
}
