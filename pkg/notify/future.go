package notify

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Future is a one-shot result bridged from a Notifier. Construction registers
// exactly one internal listener filtered to the first event; the listener is
// deregistered exactly once, on whichever of success, failure or cancellation
// happens first.
type Future[T any] struct {
	mutex     *sync.Mutex
	done      chan struct{}
	val       T
	err       error
	resolved  bool
	cancelled bool
	reg       *Registration
}

// NewFuture registers on n and resolves with the first value pushed after
// registration, or fails with the first pushed error.
func NewFuture[T any](n *Notifier[T]) *Future[T] {
	f := &Future[T]{mutex: &sync.Mutex{}, done: make(chan struct{})}
	// Hold the lock across Register so a push racing with construction blocks
	// in settle until f.reg is assigned.
	f.mutex.Lock()
	f.reg = n.Register(&futureListener[T]{f})
	f.mutex.Unlock()
	return f
}

type futureListener[T any] struct{ f *Future[T] }

func (l *futureListener[T]) OnEvent(v T) { l.f.settle(v, nil) }

func (l *futureListener[T]) OnError(err error) {
	var zero T
	l.f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) {
	f.mutex.Lock()
	if f.resolved || f.cancelled {
		f.mutex.Unlock()
		return
	}
	f.resolved = true
	f.val = v
	f.err = err
	reg := f.reg
	f.mutex.Unlock()
	reg.Deregister()
	close(f.done)
}

// Done closes once the future is resolved, failed, or cancelled
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Result returns the outcome. ok is false until the future settles or after
// cancellation.
func (f *Future[T]) Result() (val T, err error, ok bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.val, f.err, f.resolved
}

// Await blocks until the future settles or duration elapses
func (f *Future[T]) Await(duration time.Duration) (T, error) {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	var zero T
	select {
	case <-f.done:
		val, err, ok := f.Result()
		if !ok {
			return zero, errors.New("Await issue: future was cancelled")
		}
		return val, err
	case <-timer.C:
		return zero, errors.New("Timeout")
	}
}

// Cancel deregisters the internal listener without resolving. Idempotent,
// and a no-op once the future has settled.
func (f *Future[T]) Cancel() {
	f.mutex.Lock()
	if f.resolved || f.cancelled {
		f.mutex.Unlock()
		return
	}
	f.cancelled = true
	reg := f.reg
	f.mutex.Unlock()
	reg.Deregister()
	close(f.done)
}
