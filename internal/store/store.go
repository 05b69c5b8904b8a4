// Package store holds the console-wide configuration state and notifies
// subscribed views when it changes.
package store

import "sync"

// State is the global console configuration.
type State struct {
	// Target is the selected tenant/environment; empty when none is selected.
	Target string
}

// HasTarget reports whether a target is selected.
func (s State) HasTarget() bool {
	return s.Target != ""
}

// Store is a single-value state container. Subscribers always observe the
// latest state; intermediate states may be skipped if a subscriber is slow.
type Store struct {
	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]*Subscription
}

// New creates a store with the given initial state.
func New(initial State) *Store {
	return &Store{
		state: initial,
		subs:  make(map[int]*Subscription),
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetTarget selects a target. Subscribers are notified only when the value
// changes.
func (s *Store) SetTarget(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Target == target {
		return
	}
	s.state.Target = target
	for _, sub := range s.subs {
		sub.offer(s.state)
	}
}

// Subscribe registers a subscriber. The current state is delivered
// immediately.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &Subscription{
		id:    s.nextID,
		store: s,
		ch:    make(chan State, 1),
	}
	s.nextID++
	s.subs[sub.id] = sub
	sub.offer(s.state)
	return sub
}

func (s *Store) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(sub.ch)
	}
}

// Subscription receives state changes until closed.
type Subscription struct {
	id    int
	store *Store
	ch    chan State
	once  sync.Once
}

// C returns the channel of state updates. It is closed by Close.
func (sub *Subscription) C() <-chan State {
	return sub.ch
}

// Close unsubscribes. It is safe to call more than once.
func (sub *Subscription) Close() {
	sub.once.Do(func() { sub.store.remove(sub.id) })
}

// offer replaces any undelivered state with st. Callers hold the store lock.
func (sub *Subscription) offer(st State) {
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- st
}
