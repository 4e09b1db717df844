// Package store is a small observable state container. Listeners receive a
// copy of the state after every committed update; updates made inside Batch
// produce a single notification when the outermost batch returns.
package store

import (
	"sync"
)

type Listener[S any] func(S)

type Store[S any] struct {
	mu        sync.Mutex
	state     S
	batching  int
	dirty     bool
	nextID    int
	listeners map[int]Listener[S]

	// serializes delivery so listeners never see snapshots out of order
	notifyMu sync.Mutex
}

func New[S any](initial S) *Store[S] {
	return &Store[S]{state: initial, listeners: make(map[int]Listener[S])}
}

func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update replaces the state with fn(state). fn must not call back into the store.
func (s *Store[S]) Update(fn func(S) S) {
	s.mu.Lock()
	s.state = fn(s.state)
	if s.batching > 0 {
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.notify()
}

// Batch runs fn with notifications suppressed and notifies once afterwards.
func (s *Store[S]) Batch(fn func()) {
	s.mu.Lock()
	s.batching++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.batching--
		fire := s.batching == 0 && s.dirty
		if fire {
			s.dirty = false
		}
		s.mu.Unlock()
		if fire {
			s.notify()
		}
	}()

	fn()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store[S]) Subscribe(l Listener[S]) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store[S]) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	state := s.state
	listeners := make([]Listener[S], 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}
