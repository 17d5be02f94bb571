package supervisor

import (
	log "github.com/sirupsen/logrus"

	"github.com/Krajiyah/supervisor-sdk/pkg/stream"
)

// Supervisor watches an abstract connection source for liveness. Every run
// races the source against a watchdog, probes readiness on each signal with
// switch-latest semantics, treats the expected disconnect as graceful
// absence, and collapses the pipeline to a single ready/absent/failed
// outcome.
type Supervisor[T, R any] struct {
	conf     *Config
	probe    stream.Probe[T, R]
	listener Listener[R]
}

// New makes a supervisor. A nil conf uses DefaultConfig, a nil probe uses
// the delayed default probe with the zero R value, a nil listener is a nop.
func New[T, R any](conf *Config, probe stream.Probe[T, R], listener Listener[R]) *Supervisor[T, R] {
	if conf == nil {
		conf = DefaultConfig()
	}
	if probe == nil {
		var zero R
		probe = stream.DelayedProbe[T](zero, conf.Probe())
	}
	if listener == nil {
		listener = NopListener[R]{}
	}
	return &Supervisor[T, R]{conf: conf, probe: probe, listener: listener}
}

// Start begins supervising src and returns the pending outcome. Cancelling
// the pending result tears down the whole pipeline, watchdog included.
func (s *Supervisor[T, R]) Start(src stream.Source[T]) *stream.Pending[R] {
	raced := stream.RaceTimeout(src, s.conf.Watchdog(), stream.Disconnected())
	probed := stream.SwitchLatest(raced, s.probe)
	calmed := stream.CompleteOnExpected(probed, stream.KindDisconnectTimeout)
	pending := stream.First(calmed)
	go s.notify(pending)
	return pending
}

// AwaitReady supervises src and blocks until the outcome resolves or the
// configured await bound elapses. Callers observe exactly one of a value,
// an explicit absent result, or a failure; never a hang past the bound.
func (s *Supervisor[T, R]) AwaitReady(src stream.Source[T]) (stream.Result[R], error) {
	return s.Start(src).Await(s.conf.Await())
}

func (s *Supervisor[T, R]) notify(p *stream.Pending[R]) {
	<-p.Done()
	res, ok := p.Result()
	if !ok {
		log.Debug("supervised run cancelled before resolution")
		return
	}
	defer func() {
		if err := stream.Guard(recover()); err != nil {
			log.Error("listener panic: " + err.Error())
		}
	}()
	switch res.Kind {
	case stream.ResultValue:
		log.Debug("connection ready")
		s.listener.OnReady(res.Value)
	case stream.ResultEmpty:
		log.Debug("connection absent: expected disconnect")
		s.listener.OnAbsent()
	case stream.ResultFailure:
		log.Debug("connection failed: " + res.Err.Error())
		s.listener.OnInternalError(res.Err)
	}
}
