package notify

import (
	"sync"

	"github.com/bradfitz/slice"
	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"

	"github.com/Krajiyah/supervisor-sdk/pkg/stream"
)

// Listener receives multicast pushes. Delivery happens only while the
// listener is registered; nothing is replayed.
type Listener[T any] interface {
	OnEvent(T)
	OnError(error)
}

// Registration is the deregister handle returned by Register.
// Deregistering more than once is a no-op.
type Registration struct {
	id     string
	once   sync.Once
	remove func(string)
}

// ID returns the registration token
func (r *Registration) ID() string { return r.id }

// Deregister removes the listener from the notifier
func (r *Registration) Deregister() {
	r.once.Do(func() { r.remove(r.id) })
}

// Notifier is a multicast push source. Many independent listeners may be
// registered at once; each receives every event pushed while registered.
type Notifier[T any] struct {
	mutex     *sync.Mutex
	listeners map[string]Listener[T]
	ids       mapset.Set
}

// NewNotifier makes an empty notifier
func NewNotifier[T any]() *Notifier[T] {
	return &Notifier[T]{
		mutex:     &sync.Mutex{},
		listeners: map[string]Listener[T]{},
		ids:       mapset.NewSet(),
	}
}

// Register adds a listener and returns its deregister handle
func (n *Notifier[T]) Register(l Listener[T]) *Registration {
	id := uuid.New().String()
	n.mutex.Lock()
	n.listeners[id] = l
	n.ids.Add(id)
	n.mutex.Unlock()
	return &Registration{id: id, remove: n.remove}
}

func (n *Notifier[T]) remove(id string) {
	n.mutex.Lock()
	if n.ids.Contains(id) {
		n.ids.Remove(id)
		delete(n.listeners, id)
	}
	n.mutex.Unlock()
}

// Publish delivers v to every currently registered listener. Listeners are
// invoked outside the notifier lock so they may deregister from within the
// callback.
func (n *Notifier[T]) Publish(v T) {
	for _, l := range n.snapshot() {
		n.dispatch(func() { l.OnEvent(v) })
	}
}

// Fail delivers err to every currently registered listener
func (n *Notifier[T]) Fail(err error) {
	for _, l := range n.snapshot() {
		n.dispatch(func() { l.OnError(err) })
	}
}

func (n *Notifier[T]) dispatch(fn func()) {
	defer func() {
		// a panicking listener must not take down the other listeners
		_ = stream.Guard(recover())
	}()
	fn()
}

func (n *Notifier[T]) snapshot() []Listener[T] {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	ret := make([]Listener[T], 0, len(n.listeners))
	for _, l := range n.listeners {
		ret = append(ret, l)
	}
	return ret
}

// Registrations returns the active registration tokens in sorted order
func (n *Notifier[T]) Registrations() []string {
	n.mutex.Lock()
	ids := make([]string, 0, len(n.listeners))
	for id := range n.listeners {
		ids = append(ids, id)
	}
	n.mutex.Unlock()
	slice.Sort(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
