package stream

import "time"

// After is a one-shot timer source: it emits the firing time once after d,
// then completes. Cancelling the handle before expiry stops the timer and
// nothing is delivered.
func After(d time.Duration) Source[time.Time] {
	return SourceFunc[time.Time](func(sink Sink[time.Time]) *Handle {
		h := NewHandle()
		g := newGate(sink, h)
		timer := time.NewTimer(d)
		stop := make(chan struct{})
		h.OnCancel(func() {
			timer.Stop()
			close(stop)
		})
		go func() {
			select {
			case ts := <-timer.C:
				if g.value(ts) {
					g.complete()
				}
			case <-stop:
			}
		}()
		return h
	})
}

// Every is a periodic timer source: it emits tick indexes 0, 1, 2, ... every
// d until cancelled. It never terminates on its own.
func Every(d time.Duration) Source[int] {
	return SourceFunc[int](func(sink Sink[int]) *Handle {
		h := NewHandle()
		g := newGate(sink, h)
		ticker := time.NewTicker(d)
		stop := make(chan struct{})
		h.OnCancel(func() {
			ticker.Stop()
			close(stop)
		})
		go func() {
			i := 0
			for {
				select {
				case <-ticker.C:
					g.value(i)
					i++
				case <-stop:
					return
				}
			}
		}()
		return h
	})
}
