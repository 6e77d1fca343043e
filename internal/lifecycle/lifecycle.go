package lifecycle

import (
	"slices"
	"sync"
)

// State models the host application's foreground/background condition.
type State string

const (
	StateActive     State = "active"
	StateInactive   State = "inactive"
	StateBackground State = "background"
)

// IsForeground reports whether the state counts as user-visible.
func (s State) IsForeground() bool { return s == StateActive }

// Signal is a small fan-out hub for lifecycle transitions. The UI shell
// feeds it state changes; core components subscribe to react.
type Signal struct {
	mu        sync.Mutex
	state     State
	listeners []func(old, new State)
}

func NewSignal() *Signal {
	return &Signal{state: StateActive}
}

// Current returns the most recently set state.
func (s *Signal) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a listener invoked on every transition. Listeners run
// synchronously in Set's caller; they must not block.
func (s *Signal) Subscribe(fn func(old, new State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Set transitions to the given state, notifying listeners when it changed.
func (s *Signal) Set(next State) {
	s.mu.Lock()
	prev := s.state
	if prev == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
}
