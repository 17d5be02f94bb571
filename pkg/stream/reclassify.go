package stream

// CompleteOnExpected rewrites terminal errors of the expected kind into
// graceful completion. Every other error is re-emitted unchanged, value
// events pass through untouched. The rewrite is stateless and total.
func CompleteOnExpected[T any](src Source[T], expected ErrorKind) Source[T] {
	return SourceFunc[T](func(sink Sink[T]) *Handle {
		return src.Start(Sink[T]{
			OnValue: sink.Value,
			OnError: func(err error) {
				if Classify(err) == expected {
					sink.Complete()
					return
				}
				sink.Fail(err)
			},
			OnComplete: sink.Complete,
		})
	})
}
