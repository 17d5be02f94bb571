package blescan

import (
	"context"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	"gotest.tools/assert"

	. "github.com/Krajiyah/supervisor-sdk/internal"
	"github.com/Krajiyah/supervisor-sdk/pkg/stream"
	"github.com/Krajiyah/supervisor-sdk/pkg/stream/streamtest"
)

const (
	testAddr      = "11:22:33:44:55:66"
	testOtherAddr = "AA:BB:CC:DD:EE:FF"
	testRSSI      = -60
)

type fakeCoreMethods struct {
	advs      []ble.Advertisement
	err       error
	cancelled chan struct{}
}

func (m *fakeCoreMethods) Scan(ctx context.Context, _ bool, h ble.AdvHandler, f ble.AdvFilter) error {
	for _, a := range m.advs {
		if f == nil || f(a) {
			h(a)
		}
	}
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	if m.cancelled != nil {
		close(m.cancelled)
	}
	return ctx.Err()
}

func testAdvs() []ble.Advertisement {
	return []ble.Advertisement{
		DummyAdv{Address: DummyAddr{Address: testAddr}, Rssi: testRSSI},
		DummyAdv{Address: DummyAddr{Address: testOtherAddr}, Rssi: testRSSI - 10},
	}
}

func TestSourceDeliversAdvertisements(t *testing.T) {
	s := newScanner(&fakeCoreMethods{advs: testAdvs()}, nil)
	rec := streamtest.NewRecorder[ble.Advertisement]()
	h := s.Source().Start(rec.Sink())
	defer h.Cancel()

	time.Sleep(time.Millisecond * 100)
	values := rec.Values()
	assert.Equal(t, 2, len(values))
	assert.Equal(t, testAddr, values[0].Addr().String())
	assert.Equal(t, testRSSI, values[0].RSSI())
	_, terminated := rec.Terminal()
	assert.Check(t, !terminated)
}

func TestSourceAppliesFilter(t *testing.T) {
	filter := func(a ble.Advertisement) bool { return a.Addr().String() == testAddr }
	s := newScanner(&fakeCoreMethods{advs: testAdvs()}, filter)
	rec := streamtest.NewRecorder[ble.Advertisement]()
	h := s.Source().Start(rec.Sink())
	defer h.Cancel()

	time.Sleep(time.Millisecond * 100)
	values := rec.Values()
	assert.Equal(t, 1, len(values))
	assert.Equal(t, testAddr, values[0].Addr().String())
}

func TestSourceCancelStopsPlatformScan(t *testing.T) {
	cancelled := make(chan struct{})
	s := newScanner(&fakeCoreMethods{cancelled: cancelled}, nil)
	rec := streamtest.NewRecorder[ble.Advertisement]()
	h := s.Source().Start(rec.Sink())

	h.Cancel()
	h.Cancel() // idempotent
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("platform scan was not cancelled")
	}
	// cancellation is not a terminal event
	time.Sleep(time.Millisecond * 50)
	assert.Equal(t, 0, len(rec.Events()))
}

func TestSourceScanErrorPropagates(t *testing.T) {
	s := newScanner(&fakeCoreMethods{err: errors.New("hci device down")}, nil)
	rec := streamtest.NewRecorder[ble.Advertisement]()
	h := s.Source().Start(rec.Sink())
	defer h.Cancel()

	time.Sleep(time.Millisecond * 100)
	term, ok := rec.Terminal()
	assert.Check(t, ok)
	assert.Equal(t, stream.EventError, term.Kind)
	assert.Equal(t, stream.KindUpstream, stream.Classify(term.Err))
	assert.ErrorContains(t, term.Err, "hci device down")
}

func TestSourceForCompletesWhenWindowElapses(t *testing.T) {
	s := newScanner(&fakeCoreMethods{advs: testAdvs()}, nil)
	rec := streamtest.NewRecorder[ble.Advertisement]()
	h := s.SourceFor(time.Millisecond * 50).Start(rec.Sink())
	defer h.Cancel()

	time.Sleep(time.Millisecond * 200)
	assert.Equal(t, 2, len(rec.Values()))
	term, ok := rec.Terminal()
	assert.Check(t, ok)
	assert.Equal(t, stream.EventComplete, term.Kind)
}
