package stream

import "time"

// RaceTimeout merges src with a watchdog that fails the stream with failErr
// once d elapses. Values from src pass through while the watchdog is pending;
// if src reaches a terminal event first it is forwarded unchanged and the
// watchdog timer is stopped. Whichever side loses the race is cancelled, and
// cancelling the returned handle cancels both sides.
func RaceTimeout[T any](src Source[T], d time.Duration, failErr error) Source[T] {
	return SourceFunc[T](func(sink Sink[T]) *Handle {
		h := NewHandle()
		g := newGate(sink, h)

		watchdog := NewHandle()
		upstream := src.Start(Sink[T]{
			OnValue: func(v T) { g.value(v) },
			OnError: func(err error) {
				if g.fail(err) {
					watchdog.Cancel()
				}
			},
			OnComplete: func() {
				if g.complete() {
					watchdog.Cancel()
				}
			},
		})

		timer := time.NewTimer(d)
		stop := make(chan struct{})
		watchdog.OnCancel(func() {
			timer.Stop()
			close(stop)
		})
		go func() {
			select {
			case <-timer.C:
				if g.fail(failErr) {
					upstream.Cancel()
				}
			case <-stop:
			}
		}()

		h.Adopt(upstream)
		h.Adopt(watchdog)
		return h
	})
}
