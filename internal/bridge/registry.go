package bridge

import (
	"errors"

	"github.com/smazurov/audionode/pkg/pw"
)

// ErrUnregisteredObject is returned when a listener or removal callback is
// attached to an id that has no proxy registered. A listener must never
// precede or outlive its object.
var ErrUnregisteredObject = errors.New("bridge: object not registered")

// subscription owns everything bound to one remote object: the proxy
// (dropping it tears down the remote binding), the release functions of
// its property-change listeners, and the removal callbacks that forward
// the object's disappearance downstream.
type subscription struct {
	proxy     pw.Proxy
	listeners []func()
	onRemove  []func()
}

// Registry is the per-object bookkeeping for every bound remote object.
// It is owned by the supervisor and only ever touched from the event loop
// thread, so it carries no locking.
type Registry struct {
	subs map[uint32]*subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[uint32]*subscription)}
}

// Register takes ownership of the proxy for id. Registering an id twice is
// a no-op; the first proxy stays.
func (r *Registry) Register(id uint32, proxy pw.Proxy) {
	if _, exists := r.subs[id]; exists {
		return
	}
	r.subs[id] = &subscription{proxy: proxy}
}

// AddListener appends a listener release function to the id's bucket.
func (r *Registry) AddListener(id uint32, release func()) error {
	sub, ok := r.subs[id]
	if !ok {
		return ErrUnregisteredObject
	}
	sub.listeners = append(sub.listeners, release)
	return nil
}

// OnRemove appends a removal callback, invoked by Remove in registration
// order.
func (r *Registry) OnRemove(id uint32, fn func()) error {
	sub, ok := r.subs[id]
	if !ok {
		return ErrUnregisteredObject
	}
	sub.onRemove = append(sub.onRemove, fn)
	return nil
}

// Remove tears down the id's subscription: removal callbacks fire first in
// registration order, then listeners are released, then the proxy is
// destroyed. The ordering is an invariant: removal callbacks forward
// EntryRemove while the proxy is still valid, and releasing the listeners
// before the proxy keeps a late in-flight property callback from racing
// the removal. Returns false when the id was not tracked.
func (r *Registry) Remove(id uint32) bool {
	sub, ok := r.subs[id]
	if !ok {
		return false
	}
	delete(r.subs, id)

	for _, fn := range sub.onRemove {
		fn()
	}
	for _, release := range sub.listeners {
		release()
	}
	if sub.proxy != nil {
		sub.proxy.Destroy()
	}
	return true
}

// Clear drops every subscription without invoking removal callbacks.
// Shutdown is a global teardown, not a per-object lifecycle transition:
// the Shutdown action supersedes individual EntryRemove semantics.
func (r *Registry) Clear() {
	for id, sub := range r.subs {
		for _, release := range sub.listeners {
			release()
		}
		if sub.proxy != nil {
			sub.proxy.Destroy()
		}
		delete(r.subs, id)
	}
}

// Contains reports whether id is tracked.
func (r *Registry) Contains(id uint32) bool {
	_, ok := r.subs[id]
	return ok
}

// Len returns the number of tracked objects.
func (r *Registry) Len() int {
	return len(r.subs)
}
