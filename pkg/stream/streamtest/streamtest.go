// Package streamtest provides scripted sources and a recording sink for
// exercising stream combinators in tests.
package streamtest

import (
	"sync"
	"time"

	"github.com/Krajiyah/supervisor-sdk/pkg/stream"
)

// Step is one scheduled emission of a scripted source. After is measured
// from the previous step.
type Step[T any] struct {
	After    time.Duration
	Value    T
	Err      error
	Complete bool
}

// Value makes a value step
func Value[T any](after time.Duration, v T) Step[T] { return Step[T]{After: after, Value: v} }

// Fail makes a terminal error step
func Fail[T any](after time.Duration, err error) Step[T] { return Step[T]{After: after, Err: err} }

// Complete makes a graceful termination step
func Complete[T any](after time.Duration) Step[T] { return Step[T]{After: after, Complete: true} }

// Scripted replays the steps in order. A terminal step ends the stream; a
// script without one stays silent forever after the last step, like a live
// connection that just stops signalling.
func Scripted[T any](steps ...Step[T]) stream.Source[T] {
	return stream.SourceFunc[T](func(sink stream.Sink[T]) *stream.Handle {
		h := stream.NewHandle()
		stop := make(chan struct{})
		h.OnCancel(func() { close(stop) })
		go func() {
			for _, step := range steps {
				timer := time.NewTimer(step.After)
				select {
				case <-timer.C:
				case <-stop:
					timer.Stop()
					return
				}
				switch {
				case step.Err != nil:
					sink.Fail(step.Err)
					return
				case step.Complete:
					sink.Complete()
					return
				default:
					sink.Value(step.Value)
				}
			}
		}()
		return h
	})
}

// Never is a source that emits nothing until cancelled
func Never[T any]() stream.Source[T] { return Scripted[T]() }

// Recorded is an event captured by a Recorder with its delivery time
type Recorded[T any] struct {
	Event stream.Event[T]
	At    time.Time
}

// Recorder is a sink that captures everything delivered to it
type Recorder[T any] struct {
	mutex  *sync.Mutex
	events []Recorded[T]
}

// NewRecorder makes an empty recorder
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{mutex: &sync.Mutex{}}
}

// Sink returns the capturing sink
func (r *Recorder[T]) Sink() stream.Sink[T] {
	return stream.Sink[T]{
		OnValue:    func(v T) { r.record(stream.ValueEvent(v)) },
		OnError:    func(err error) { r.record(stream.ErrorEvent[T](err)) },
		OnComplete: func() { r.record(stream.CompleteEvent[T]()) },
	}
}

func (r *Recorder[T]) record(e stream.Event[T]) {
	r.mutex.Lock()
	r.events = append(r.events, Recorded[T]{Event: e, At: time.Now()})
	r.mutex.Unlock()
}

// Events returns a copy of everything recorded so far
func (r *Recorder[T]) Events() []Recorded[T] {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ret := make([]Recorded[T], len(r.events))
	copy(ret, r.events)
	return ret
}

// Values returns the value events recorded so far
func (r *Recorder[T]) Values() []T {
	ret := []T{}
	for _, rec := range r.Events() {
		if rec.Event.Kind == stream.EventValue {
			ret = append(ret, rec.Event.Value)
		}
	}
	return ret
}

// Terminal returns the terminal event, if one was recorded
func (r *Recorder[T]) Terminal() (stream.Event[T], bool) {
	for _, rec := range r.Events() {
		if rec.Event.Terminal() {
			return rec.Event, true
		}
	}
	return stream.Event[T]{}, false
}
