// Package mailbox holds pending jobs keyed by source, where the latest job
// for a key always wins.
package mailbox

import (
	"context"
	"sync"
)

// Mailbox is NOT a queue. It holds at most one pending job per key;
// Put overwrites any job already waiting under the same key. Keys are
// handed out in the order they first became pending.
type Mailbox[K comparable, T any] struct {
	mu     sync.Mutex
	jobs   map[K]T
	order  []K
	notify chan struct{}
}

// New creates an empty mailbox.
func New[K comparable, T any]() *Mailbox[K, T] {
	return &Mailbox[K, T]{
		jobs:   make(map[K]T),
		notify: make(chan struct{}, 1),
	}
}

// Put stores j under key, replacing any pending job for key.
// It never blocks.
func (m *Mailbox[K, T]) Put(key K, j T) {
	m.mu.Lock()
	if _, ok := m.jobs[key]; !ok {
		m.order = append(m.order, key)
	}
	m.jobs[key] = j
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Take blocks until a job is available or ctx is done.
func (m *Mailbox[K, T]) Take(ctx context.Context) (T, bool) {
	for {
		if j, ok := m.TryTake(); ok {
			return j, true
		}
		select {
		case <-m.notify:
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}

// TryTake returns the oldest pending job without blocking.
func (m *Mailbox[K, T]) TryTake() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.order) == 0 {
		var zero T
		return zero, false
	}
	key := m.order[0]
	m.order = m.order[1:]
	j := m.jobs[key]
	delete(m.jobs, key)
	return j, true
}

// Len reports how many keys have a job waiting.
func (m *Mailbox[K, T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}
