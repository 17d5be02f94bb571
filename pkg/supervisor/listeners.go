package supervisor

// Listener receives the supervisor's terminal outcome. Exactly one callback
// fires per supervised run.
type Listener[R any] interface {
	OnReady(R)
	OnAbsent()
	OnInternalError(error)
}

// NopListener ignores all callbacks
type NopListener[R any] struct{}

func (NopListener[R]) OnReady(R)             {}
func (NopListener[R]) OnAbsent()             {}
func (NopListener[R]) OnInternalError(error) {}
