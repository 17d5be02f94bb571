package stream

import "sync"

// Handle is the cancellation token for an active subscription.
// Cancel is idempotent and cancels all adopted children before running this
// handle's own teardown functions, so no timer or registration outlives it.
type Handle struct {
	mu        sync.Mutex
	once      sync.Once
	cancelled bool
	children  []*Handle
	teardown  []func()
}

// NewHandle makes an empty handle
func NewHandle() *Handle { return &Handle{} }

// OnCancel registers a teardown function. If the handle is already cancelled
// the function runs immediately.
func (h *Handle) OnCancel(fn func()) {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		fn()
		return
	}
	h.teardown = append(h.teardown, fn)
	h.mu.Unlock()
}

// Adopt ties a child subscription's lifetime to this handle. An already
// cancelled parent cancels the child immediately.
func (h *Handle) Adopt(child *Handle) {
	if child == nil {
		return
	}
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		child.Cancel()
		return
	}
	h.children = append(h.children, child)
	h.mu.Unlock()
}

// Cancel runs this handle's teardown in registration order, then cancels all
// adopted children. Teardown runs first so a sealed consumer can never see a
// late delivery from a child mid-cancellation. Calling Cancel more than once
// is a no-op.
func (h *Handle) Cancel() {
	h.once.Do(func() {
		h.mu.Lock()
		h.cancelled = true
		children := h.children
		teardown := h.teardown
		h.children = nil
		h.teardown = nil
		h.mu.Unlock()
		for _, fn := range teardown {
			fn()
		}
		for _, c := range children {
			c.Cancel()
		}
	})
}

// Cancelled reports whether Cancel has been called
func (h *Handle) Cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// gate serializes delivery into a sink and seals it after the first terminal
// event or after the owning handle is cancelled. Sealing on cancel is what
// keeps late timer or callback firings from reaching the consumer.
type gate[T any] struct {
	mu   sync.Mutex
	sink Sink[T]
	done bool
}

func newGate[T any](sink Sink[T], h *Handle) *gate[T] {
	g := &gate[T]{sink: sink}
	h.OnCancel(g.seal)
	return g
}

func (g *gate[T]) seal() {
	g.mu.Lock()
	g.done = true
	g.mu.Unlock()
}

// value delivers v unless the gate is sealed. Returns false if sealed.
func (g *gate[T]) value(v T) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return false
	}
	g.sink.Value(v)
	return true
}

// fail delivers a terminal error and seals the gate
func (g *gate[T]) fail(err error) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return false
	}
	g.done = true
	g.sink.Fail(err)
	return true
}

// complete delivers graceful termination and seals the gate
func (g *gate[T]) complete() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return false
	}
	g.done = true
	g.sink.Complete()
	return true
}
