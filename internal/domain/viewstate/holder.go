package viewstate

import (
	"context"
	"sync"
	"sync/atomic"
)

// Cycle identifies one load cycle. Settlements carry the cycle they were issued in.
type Cycle uint64

// Holder owns the view state of a single page. Only the owning controller mutates it.
//
// Every Begin starts a new cycle; Apply and Fail calls from older cycles are
// discarded, and once a cycle has left loading further settlements are ignored.
type Holder[T any] struct {
	mu      sync.Mutex
	cycle   Cycle
	state   State[T]
	partial T
	changed chan struct{}

	stale   atomic.Int64
	latched atomic.Int64
}

// NewHolder returns a holder in the loading state.
func NewHolder[T any]() *Holder[T] {
	return &Holder[T]{
		state:   Loading[T](),
		changed: make(chan struct{}),
	}
}

// Begin starts a new load cycle, resetting the state to loading.
func (h *Holder[T]) Begin() Cycle {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cycle++
	var zero T
	h.partial = zero
	h.state = Loading[T]()
	h.notifyLocked()
	return h.cycle
}

// Current returns the active cycle.
func (h *Holder[T]) Current() Cycle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cycle
}

// Apply merges a resolved result into the cycle's partial payload. fn reports whether
// the payload is now complete, which moves the state to ready. Returns false when the
// settlement was discarded.
func (h *Holder[T]) Apply(c Cycle, fn func(partial *T) (complete bool)) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.acceptLocked(c) {
		return false
	}
	if fn(&h.partial) {
		h.state = Ready(h.partial)
		h.notifyLocked()
	}
	return true
}

// Fail latches the error state for cycle c. The first failure wins.
func (h *Holder[T]) Fail(c Cycle, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.acceptLocked(c) {
		return false
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	h.state = Failed[T](msg)
	h.notifyLocked()
	return true
}

// State returns a snapshot of the current state.
func (h *Holder[T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Wait blocks until the current cycle leaves loading or ctx is done, and returns the
// state observed at that moment.
func (h *Holder[T]) Wait(ctx context.Context) State[T] {
	for {
		h.mu.Lock()
		st, ch := h.state, h.changed
		h.mu.Unlock()

		if st.Kind() != KindLoading {
			return st
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return h.State()
		}
	}
}

// Discarded reports how many settlements were dropped because their cycle was stale
// and how many arrived after the cycle had already settled.
func (h *Holder[T]) Discarded() (stale, latched int64) {
	return h.stale.Load(), h.latched.Load()
}

func (h *Holder[T]) acceptLocked(c Cycle) bool {
	if c != h.cycle {
		h.stale.Add(1)
		return false
	}
	if h.state.Kind() != KindLoading {
		h.latched.Add(1)
		return false
	}
	return true
}

func (h *Holder[T]) notifyLocked() {
	close(h.changed)
	h.changed = make(chan struct{})
}
