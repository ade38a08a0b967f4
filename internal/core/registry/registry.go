package registry

import (
	"context"
	"sync"
)

// State is the lifecycle of one registry entry. An id with no entry is
// Uninitialized.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "uninitialized"
}

type Loader[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	state State
	done  chan struct{}
	value V
	err   error
}

// Registry owns exactly one value per id. The first caller for an unknown id
// installs a placeholder before running the loader; concurrent callers for
// the same id wait for that load instead of starting their own.
type Registry[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
}

func New[V any]() *Registry[V] {
	return &Registry[V]{entries: make(map[string]*entry[V])}
}

// Get returns the value for id, running load at most once per id at a time.
// A failed load is reported to every waiter and then forgotten, so the next
// Get retries.
func (r *Registry[V]) Get(ctx context.Context, id string, load Loader[V]) (V, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry[V]{state: Initializing, done: make(chan struct{})}
		r.entries[id] = e
		r.mu.Unlock()
		r.run(ctx, id, e, load)
		return e.value, e.err
	}
	r.mu.Unlock()

	select {
	case <-e.done:
		return e.value, e.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (r *Registry[V]) run(ctx context.Context, id string, e *entry[V], load Loader[V]) {
	value, err := load(ctx)

	r.mu.Lock()
	if err != nil {
		e.state = Failed
		e.err = err
		delete(r.entries, id)
	} else {
		e.state = Ready
		e.value = value
	}
	r.mu.Unlock()

	close(e.done)
}

// peek returns the value only when it is Ready.
func (r *Registry[V]) peek(id string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.state != Ready {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (r *Registry[V]) state(id string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return Uninitialized
	}
	return e.state
}

// Len counts Ready entries.
func (r *Registry[V]) Len() int {
	return r.count(Ready)
}

// Loading counts entries whose loader is still running.
func (r *Registry[V]) Loading() int {
	return r.count(Initializing)
}

func (r *Registry[V]) count(s State) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.state == s {
			n++
		}
	}
	return n
}
