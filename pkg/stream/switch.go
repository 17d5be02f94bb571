package stream

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Probe is a bounded asynchronous operation started for an upstream value.
// It must return promptly once ctx is cancelled; a cancelled probe's result
// is discarded.
type Probe[T, R any] func(ctx context.Context, v T) (R, error)

// DelayedProbe makes a probe that succeeds with r after d unless cancelled.
func DelayedProbe[T, R any](r R, d time.Duration) Probe[T, R] {
	return func(ctx context.Context, _ T) (R, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return r, nil
		case <-ctx.Done():
			var zero R
			return zero, ctx.Err()
		}
	}
}

// SwitchLatest starts probe for every upstream value, cancelling whichever
// probe was previously in flight before the new one starts. Only the most
// recent probe's outcome is ever observed downstream: a successful probe
// emits its result as a value, a failed probe fails the stream. An upstream
// terminal event cancels the in-flight probe and is forwarded unchanged.
func SwitchLatest[T, R any](src Source[T], probe Probe[T, R]) Source[R] {
	return SourceFunc[R](func(sink Sink[R]) *Handle {
		h := NewHandle()
		g := newGate(sink, h)

		sl := &switcher[T, R]{g: g, probe: probe}
		h.OnCancel(sl.stop)
		h.Adopt(src.Start(Sink[T]{
			OnValue: sl.launch,
			OnError: func(err error) {
				sl.stop()
				g.fail(err)
			},
			OnComplete: func() {
				sl.stop()
				g.complete()
			},
		}))
		return h
	})
}

type switcher[T, R any] struct {
	mu     sync.Mutex
	g      *gate[R]
	probe  Probe[T, R]
	gen    int
	cancel context.CancelFunc
}

// launch supersedes the in-flight probe. The previous probe's context is
// cancelled and the generation bumped under one lock, so a stale probe can
// never deliver after its successor has started.
func (sl *switcher[T, R]) launch(v T) {
	sl.mu.Lock()
	if sl.cancel != nil {
		sl.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	sl.cancel = cancel
	sl.gen++
	gen := sl.gen
	sl.mu.Unlock()

	go func() {
		r, err := sl.run(ctx, v)
		sl.mu.Lock()
		stale := gen != sl.gen || ctx.Err() != nil
		sl.mu.Unlock()
		if stale {
			return
		}
		if err != nil {
			sl.g.fail(WithKind(KindProbeFailure, err))
			return
		}
		sl.g.value(r)
	}()
}

func (sl *switcher[T, R]) run(ctx context.Context, v T) (r R, err error) {
	defer func() {
		if p := Guard(recover()); p != nil {
			err = errors.Wrap(p, "probe panic issue: ")
		}
	}()
	return sl.probe(ctx, v)
}

// stop cancels the in-flight probe, if any
func (sl *switcher[T, R]) stop() {
	sl.mu.Lock()
	if sl.cancel != nil {
		sl.cancel()
		sl.cancel = nil
	}
	sl.gen++
	sl.mu.Unlock()
}
