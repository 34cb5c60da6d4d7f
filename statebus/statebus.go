// Package statebus is an in-process, one-way broadcast for
// OR-connection state-change messages. Callers register a callback;
// publishers call Publish and every registered callback runs
// synchronously, on the publisher's own goroutine, in registration
// order.
package statebus

import (
	"reflect"
	"sync"
)

// Callback receives a published message. The concrete message type is
// left to callers (the OR-connection producer publishes its own status
// struct); the bus itself is untyped and holds no payload queue.
type Callback = func(msg any)

// Bus is the process-singleton state bus. It is initialized once at
// subsystem startup and torn down once at shutdown; Subscribe/Unsubscribe
// are only meaningful between those two calls.
type Bus struct {
	mu   sync.Mutex
	subs []Callback
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers f. Registering the same func value (by identity,
// i.e. pointer equality of the underlying code pointer) more than once
// is a no-op: the second registration is suppressed. Subscribe returns
// an unsubscribe func that removes f; calling it more than once is safe.
func (b *Bus) Subscribe(f Callback) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.subs {
		if sameCallback(existing, f) {
			return func() { b.remove(f) }
		}
	}
	b.subs = append(b.subs, f)
	return func() { b.remove(f) }
}

func (b *Bus) remove(f Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.subs {
		if sameCallback(existing, f) {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers msg synchronously to every registered callback, in
// registration order, on the caller's own goroutine. Publish does not
// hold its lock during delivery, so a callback is free to Subscribe or
// unsubscribe without deadlocking, though it will not affect the
// in-flight delivery's snapshot.
func (b *Bus) Publish(msg any) {
	b.mu.Lock()
	subs := make([]Callback, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, f := range subs {
		f(msg)
	}
}

// Shutdown drops every registered callback. Safe to call more than once.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	b.subs = nil
	b.mu.Unlock()
}

// sameCallback compares two Callback values by the identity of their
// underlying code pointer; function values themselves are not
// comparable in Go.
func sameCallback(a, b Callback) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
