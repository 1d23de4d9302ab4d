// Package state holds the application state shared by the session and post stores. State only changes
// through Dispatch, which applies one Action with the pure Reduce function under a lock, so every transition
// is atomic with respect to the others.
package state

import (
	"slices"
	"sync"

	"github.com/sidereusnuntius/goblog/internal/domain"
)

type AppState struct {
	Session domain.SessionState
	Posts   domain.PostCollection
}

// Initial returns the state at process start, given the session restored from persisted storage.
func Initial(session domain.SessionState) AppState {
	return AppState{
		Session: session,
		Posts: domain.PostCollection{
			Status: domain.StatusIdle,
		},
	}
}

// Listener is called after every transition with the action and the resulting state. Listeners run in
// subscription order and see transitions in the order they were applied. They run outside the state lock
// but must not call Dispatch, and must not retain the slices they receive.
type Listener func(action Action, next AppState)

type subscription struct {
	id int
	l  Listener
}

type Store struct {
	// notify is held from reduce to the last listener, so notifications follow transition order.
	notify sync.Mutex

	mu        sync.Mutex
	current   AppState
	listeners []subscription
	nextID    int
}

func NewStore(initial AppState) *Store {
	return &Store{
		current: initial,
	}
}

// Dispatch applies action and returns the new state.
func (s *Store) Dispatch(action Action) AppState {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	next := Reduce(s.current, action)
	s.current = next
	listeners := s.listeners
	s.mu.Unlock()

	for _, sub := range listeners {
		sub.l(action, next)
	}
	return next
}

// Snapshot returns the current state. Reduce never mutates a published slice in place, so the snapshot
// stays valid after later transitions.
func (s *Store) Snapshot() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	// Copy on write: Dispatch iterates over the slice it read without holding mu.
	s.listeners = append(slices.Clip(s.listeners), subscription{id: id, l: l})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(slices.Clone(s.listeners), func(sub subscription) bool {
			return sub.id == id
		})
	}
}
