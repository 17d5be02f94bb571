package blescan

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-ble/ble"
	"github.com/golang-collections/go-datastructures/queue"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Krajiyah/supervisor-sdk/pkg/stream"
)

const scanBufferHint = 64

type coreMethods interface {
	Scan(context.Context, bool, ble.AdvHandler, ble.AdvFilter) error
}

type realCoreMethods struct{}

func (bc *realCoreMethods) Scan(ctx context.Context, dup bool, h ble.AdvHandler, f ble.AdvFilter) error {
	return ble.Scan(ctx, dup, h, f)
}

// Scanner bridges the platform BLE scan callback into the event source
// contract. Each call to Source starts an independent scan with its own
// buffer and cancellation.
type Scanner struct {
	methods coreMethods
	filter  ble.AdvFilter
}

// NewScanner makes a scanner over the default BLE device
func NewScanner(filter ble.AdvFilter) *Scanner {
	return newScanner(&realCoreMethods{}, filter)
}

func newScanner(methods coreMethods, filter ble.AdvFilter) *Scanner {
	return &Scanner{methods: methods, filter: filter}
}

// Source returns an unbounded advertisement source. It terminates only on a
// platform scan error or when the subscription is cancelled.
func (s *Scanner) Source() stream.Source[ble.Advertisement] { return s.SourceFor(0) }

type scanItem struct {
	adv      ble.Advertisement
	err      error
	terminal bool
}

// SourceFor returns an advertisement source bounded to duration. The scan
// window elapsing is graceful completion, not an error. A duration of zero
// means unbounded.
func (s *Scanner) SourceFor(duration time.Duration) stream.Source[ble.Advertisement] {
	return stream.SourceFunc[ble.Advertisement](func(sink stream.Sink[ble.Advertisement]) *stream.Handle {
		h := stream.NewHandle()
		var ctx context.Context
		var cancelScan context.CancelFunc
		if duration > 0 {
			ctx, cancelScan = context.WithTimeout(context.Background(), duration)
		} else {
			ctx, cancelScan = context.WithCancel(context.Background())
		}
		q := queue.New(scanBufferHint)

		// active is the consumer reference: it is cleared before the
		// platform-facing cancel so no advertisement callback can be
		// delivered after disposal.
		var active atomic.Bool
		active.Store(true)
		h.OnCancel(func() {
			active.Store(false)
			cancelScan()
			q.Dispose()
		})

		go func() {
			for {
				items, err := q.Get(1)
				if err != nil {
					return // disposed
				}
				for _, raw := range items {
					item := raw.(scanItem)
					if !active.Load() {
						return
					}
					if !item.terminal {
						sink.Value(item.adv)
						continue
					}
					if item.err != nil {
						sink.Fail(item.err)
					} else {
						sink.Complete()
					}
					q.Dispose()
					return
				}
			}
		}()

		go func() {
			err := s.methods.Scan(ctx, true, func(a ble.Advertisement) {
				if !active.Load() {
					return
				}
				if e := q.Put(scanItem{adv: a}); e != nil {
					log.Debug("dropped advertisement after disposal")
				}
			}, s.filter)
			if !active.Load() {
				return
			}
			item := scanItem{terminal: true}
			cause := errors.Cause(err)
			if err != nil && cause != context.Canceled && cause != context.DeadlineExceeded {
				item.err = stream.WithKind(stream.KindUpstream, errors.Wrap(err, "Scan issue: "))
			}
			if e := q.Put(item); e != nil {
				log.Debug("dropped scan terminal after disposal")
			}
		}()

		return h
	})
}
