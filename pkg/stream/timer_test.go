package stream_test

import (
	"testing"
	"time"

	"gotest.tools/assert"

	"github.com/Krajiyah/supervisor-sdk/pkg/stream"
	"github.com/Krajiyah/supervisor-sdk/pkg/stream/streamtest"
)

func TestAfterFiresOnceThenCompletes(t *testing.T) {
	rec := streamtest.NewRecorder[time.Time]()
	start := time.Now()
	h := stream.After(fastDelay).Start(rec.Sink())
	defer h.Cancel()

	time.Sleep(fastDelay + settleDelay)
	events := rec.Events()
	assert.Equal(t, 2, len(events))
	assert.Equal(t, stream.EventValue, events[0].Event.Kind)
	assert.Equal(t, stream.EventComplete, events[1].Event.Kind)
	elapsed := events[0].At.Sub(start)
	assert.Check(t, elapsed >= fastDelay-time.Millisecond*10, "fired too early: %v", elapsed)
}

func TestAfterCancelledBeforeExpiry(t *testing.T) {
	rec := streamtest.NewRecorder[time.Time]()
	h := stream.After(watchdogDelay).Start(rec.Sink())
	h.Cancel()

	time.Sleep(watchdogDelay + settleDelay)
	assert.Equal(t, 0, len(rec.Events()))
}

func TestEveryEmitsSequentialTicks(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	h := stream.Every(fastDelay).Start(rec.Sink())

	time.Sleep(fastDelay*3 + fastDelay/2)
	h.Cancel()
	values := rec.Values()
	assert.Check(t, len(values) >= 2, "expected at least 2 ticks, got %d", len(values))
	for i, v := range values {
		assert.Equal(t, i, v)
	}
	_, terminated := rec.Terminal()
	assert.Check(t, !terminated)

	// no ticks after cancel
	count := len(values)
	time.Sleep(fastDelay * 2)
	assert.Equal(t, count, len(rec.Values()))
}
