package ledger

import "sync"

// Listener is notified after every successful dispatch.
type Listener func(State, Action)

// Store holds the current State and serializes changes to it.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore returns a store seeded with initial.
func NewStore(initial State) *Store {
	return &Store{state: initial, listeners: make(map[int]Listener)}
}

// Dispatch reduces the current state with a. On error the state is unchanged
// and listeners are not called.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	cur := s.state
	next, err := Reduce(cur, a)
	if err != nil {
		s.mu.Unlock()
		return cur, err
	}
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next, a)
	}
	return next, nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
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
