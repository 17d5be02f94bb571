package stream

import "github.com/pkg/errors"

// Guard converts a recovered panic value into an error so user callbacks
// (probes, listeners) cannot tear down the process from inside a dispatch
// goroutine. Pass it the result of recover(); nil stays nil.
func Guard(r interface{}) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(error); ok {
		return err
	}
	return errors.Errorf("panic: %v", r)
}
