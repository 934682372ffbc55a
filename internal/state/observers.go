// Package state holds the client-side application context: the auth session
// and the cart badge. Stores are plain objects passed to whoever needs them;
// interested parties Subscribe and are called back after every change.
package state

import "sync"

type observers[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

// subscribe registers fn and returns a function that removes it again.
func (o *observers[T]) subscribe(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(T))
	}
	id := o.next
	o.next++
	o.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.fns, id)
			o.mu.Unlock()
		})
	}
}

// notify calls every subscriber with v. Callbacks run outside the lock so
// they may subscribe or unsubscribe themselves.
func (o *observers[T]) notify(v T) {
	o.mu.Lock()
	fns := make([]func(T), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
