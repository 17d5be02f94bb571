package stream

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ResultKind discriminates the three outcomes of a collapsed stream
type ResultKind int

const (
	// ResultValue means the stream produced at least one value
	ResultValue ResultKind = iota
	// ResultEmpty means the stream completed gracefully with no value
	ResultEmpty
	// ResultFailure means the stream terminated with an error
	ResultFailure
)

// Result is the single outcome of First: a first value, an explicit empty
// marker, or a failure. Empty is a tag, never a nil or zero value.
type Result[T any] struct {
	Kind  ResultKind
	Value T
	Err   error
}

// Pending is a single-slot asynchronous result. It resolves exactly once, or
// never if cancelled first.
type Pending[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	res       Result[T]
	resolved  bool
	cancelled bool
	dropSrc   bool
	upstream  *Handle
}

// First collapses src to its first outcome: the first value (the upstream
// subscription is cancelled the moment it arrives), an empty result on
// completion without a value, or the propagated failure. Cancelling the
// pending result cancels the upstream and resolves nothing.
func First[T any](src Source[T]) *Pending[T] {
	p := &Pending[T]{done: make(chan struct{})}
	h := src.Start(Sink[T]{
		OnValue:    func(v T) { p.resolve(Result[T]{Kind: ResultValue, Value: v}, true) },
		OnError:    func(err error) { p.resolve(Result[T]{Kind: ResultFailure, Err: err}, false) },
		OnComplete: func() { p.resolve(Result[T]{Kind: ResultEmpty}, false) },
	})
	p.mu.Lock()
	p.upstream = h
	drop := p.dropSrc
	p.mu.Unlock()
	if drop {
		h.Cancel()
	}
	return p
}

// resolve records the outcome exactly once. Upstream cancellation happens on
// a fresh goroutine: resolve runs inside the upstream's delivery path, and
// cancelling from there would re-enter delivery locks further up the chain.
func (p *Pending[T]) resolve(res Result[T], cancelUpstream bool) {
	p.mu.Lock()
	if p.resolved || p.cancelled {
		p.mu.Unlock()
		return
	}
	p.resolved = true
	p.res = res
	upstream := p.upstream
	if cancelUpstream && upstream == nil {
		p.dropSrc = true
	}
	p.mu.Unlock()
	if cancelUpstream && upstream != nil {
		go upstream.Cancel()
	}
	close(p.done)
}

// Done closes once the result is resolved or the pending is cancelled
func (p *Pending[T]) Done() <-chan struct{} { return p.done }

// Result returns the outcome and whether one was resolved
func (p *Pending[T]) Result() (Result[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.res, p.resolved
}

// Await blocks the calling goroutine until the result resolves or duration
// elapses. It is the only blocking operation in this package.
func (p *Pending[T]) Await(duration time.Duration) (Result[T], error) {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-p.done:
		res, ok := p.Result()
		if !ok {
			return res, errors.New("Await issue: result was cancelled")
		}
		return res, nil
	case <-timer.C:
		return Result[T]{}, errors.New("Timeout")
	}
}

// Cancel abandons interest: the upstream subscription is cancelled and the
// pending result never resolves. Idempotent.
func (p *Pending[T]) Cancel() {
	p.mu.Lock()
	if p.resolved || p.cancelled {
		p.mu.Unlock()
		return
	}
	p.cancelled = true
	upstream := p.upstream
	p.upstream = nil
	p.mu.Unlock()
	if upstream != nil {
		upstream.Cancel()
	}
	close(p.done)
}
