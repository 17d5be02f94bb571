package stream

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// ErrorKind is the closed taxonomy of failures a supervised stream can carry.
// Every error maps to exactly one kind; anything untagged is KindUnknown.
type ErrorKind int

const (
	// KindUnknown covers errors not produced by this package
	KindUnknown ErrorKind = iota
	// KindDisconnectTimeout is raised by the liveness watchdog
	KindDisconnectTimeout
	// KindProbeFailure is raised when a switch-latest probe fails
	KindProbeFailure
	// KindUpstream wraps a failure surfaced by the event source itself
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindDisconnectTimeout:
		return "disconnect timeout"
	case KindProbeFailure:
		return "probe failure"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// KindError tags an underlying error with an ErrorKind
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindError) Error() string { return e.Kind.String() + ": " + e.Err.Error() }

// Unwrap exposes the underlying error to errors.Is/As
func (e *KindError) Unwrap() error { return e.Err }

// WithKind tags err with kind. A nil err returns nil.
func WithKind(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// Disconnected makes the watchdog's liveness error
func Disconnected() error {
	return WithKind(KindDisconnectTimeout, errors.New("liveness watchdog expired"))
}

// Classify maps any error to its kind. The mapping is total: untagged errors
// fall through to KindUnknown.
func Classify(err error) ErrorKind {
	var ke *KindError
	if stderrors.As(err, &ke) {
		return ke.Kind
	}
	return KindUnknown
}
