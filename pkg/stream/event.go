package stream

// EventKind discriminates the variants of an Event
type EventKind int

const (
	// EventValue marks a non-terminal item
	EventValue EventKind = iota
	// EventError marks a terminal failure
	EventError
	// EventComplete marks graceful termination
	EventComplete
)

// Event is a single item delivered by a source: a value, a terminal error, or completion.
// A source delivers any number of value events followed by exactly one terminal event.
type Event[T any] struct {
	Kind  EventKind
	Value T
	Err   error
}

// ValueEvent wraps a value into an Event
func ValueEvent[T any](v T) Event[T] { return Event[T]{Kind: EventValue, Value: v} }

// ErrorEvent wraps a terminal error into an Event
func ErrorEvent[T any](err error) Event[T] { return Event[T]{Kind: EventError, Err: err} }

// CompleteEvent makes a graceful termination Event
func CompleteEvent[T any]() Event[T] { return Event[T]{Kind: EventComplete} }

// Terminal reports whether the event ends the stream
func (e Event[T]) Terminal() bool { return e.Kind != EventValue }

// Sink is the consumer side of a source. Any callback may be nil.
type Sink[T any] struct {
	OnValue    func(T)
	OnError    func(error)
	OnComplete func()
}

// Value invokes OnValue if set
func (s Sink[T]) Value(v T) {
	if s.OnValue != nil {
		s.OnValue(v)
	}
}

// Fail invokes OnError if set
func (s Sink[T]) Fail(err error) {
	if s.OnError != nil {
		s.OnError(err)
	}
}

// Complete invokes OnComplete if set
func (s Sink[T]) Complete() {
	if s.OnComplete != nil {
		s.OnComplete()
	}
}

// Source is an abstract producer of events. Start begins delivery to the sink
// and returns a handle which cancels the delivery and releases all resources
// owned by this subscription.
type Source[T any] interface {
	Start(Sink[T]) *Handle
}

// SourceFunc adapts a function to the Source interface
type SourceFunc[T any] func(Sink[T]) *Handle

// Start calls f
func (f SourceFunc[T]) Start(s Sink[T]) *Handle { return f(s) }
