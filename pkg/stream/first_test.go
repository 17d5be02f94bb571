package stream_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"gotest.tools/assert"

	"github.com/Krajiyah/supervisor-sdk/pkg/stream"
	"github.com/Krajiyah/supervisor-sdk/pkg/stream/streamtest"
)

func TestFirstResolvesWithFirstValue(t *testing.T) {
	src := streamtest.Scripted(
		streamtest.Value(time.Millisecond*30, "a"),
		streamtest.Value(time.Millisecond*30, "b"),
	)
	p := stream.First(src)
	res, err := p.Await(time.Second)
	assert.NilError(t, err)
	assert.Equal(t, stream.ResultValue, res.Kind)
	assert.Equal(t, "a", res.Value)
}

func TestFirstCancelsUpstreamOnFirstValue(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	tap := stream.SourceFunc[int](func(sink stream.Sink[int]) *stream.Handle {
		return stream.Every(fastDelay).Start(stream.Sink[int]{
			OnValue: func(v int) {
				rec.Sink().OnValue(v)
				sink.Value(v)
			},
		})
	})
	p := stream.First[int](tap)
	res, err := p.Await(time.Second)
	assert.NilError(t, err)
	assert.Equal(t, 0, res.Value)

	// the upstream ticker must be cancelled before its next tick
	time.Sleep(fastDelay * 3)
	assert.Equal(t, 1, len(rec.Values()))
}

func TestFirstEmptyOnCompletion(t *testing.T) {
	p := stream.First(streamtest.Scripted(streamtest.Complete[int](time.Millisecond * 30)))
	res, err := p.Await(time.Second)
	assert.NilError(t, err)
	assert.Equal(t, stream.ResultEmpty, res.Kind)
}

func TestFirstPropagatesFailure(t *testing.T) {
	expected := errors.New("link reset")
	p := stream.First(streamtest.Scripted(streamtest.Fail[int](time.Millisecond*30, expected)))
	res, err := p.Await(time.Second)
	assert.NilError(t, err)
	assert.Equal(t, stream.ResultFailure, res.Kind)
	assert.Equal(t, expected, res.Err)
}

func TestFirstAwaitTimesOut(t *testing.T) {
	p := stream.First(streamtest.Never[int]())
	defer p.Cancel()
	_, err := p.Await(time.Millisecond * 100)
	assert.ErrorContains(t, err, "Timeout")
}

func TestFirstCancelResolvesNothing(t *testing.T) {
	p := stream.First(streamtest.Never[int]())
	p.Cancel()
	p.Cancel() // idempotent

	_, ok := p.Result()
	assert.Check(t, !ok)
	_, err := p.Await(time.Second)
	assert.ErrorContains(t, err, "cancelled")
}

func TestFirstResolvesExactlyOnce(t *testing.T) {
	src := streamtest.Scripted(
		streamtest.Value(time.Millisecond*20, 1),
		streamtest.Fail[int](time.Millisecond*20, errors.New("late failure")),
	)
	p := stream.First(src)
	res, err := p.Await(time.Second)
	assert.NilError(t, err)
	assert.Equal(t, stream.ResultValue, res.Kind)
	assert.Equal(t, 1, res.Value)

	time.Sleep(time.Millisecond * 100)
	res, ok := p.Result()
	assert.Check(t, ok)
	assert.Equal(t, stream.ResultValue, res.Kind)
}
