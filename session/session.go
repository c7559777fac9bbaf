// Package session tracks the latest of several overlapping requests so that
// only the most recently started one may publish its result.
package session

import "sync"

// Token identifies one request; later requests get larger tokens
type Token uint64

// State is a point-in-time view of the session
type State[T any] struct {
	Token   Token
	Loading bool
	Value   T
	Err     error
}

// Session applies results last-request-wins. Earlier requests are not
// cancelled; their results are dropped when they complete.
type Session[T any] struct {
	mu    sync.Mutex
	state State[T]
}

// Begin starts a new request, discarding the current value and error
func (s *Session[T]) Begin() Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.state = State[T]{
		Token:   s.state.Token + 1,
		Loading: true,
		Value:   zero,
	}
	return s.state.Token
}

// Complete publishes the result of the request identified by tok.
// It returns false when a newer request has begun since.
func (s *Session[T]) Complete(tok Token, value T, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok != s.state.Token || !s.state.Loading {
		return false
	}

	s.state.Loading = false
	if err != nil {
		s.state.Err = err
		return true
	}
	s.state.Value = value
	return true
}

// Latest reports whether tok is the most recently issued token
func (s *Session[T]) Latest(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tok == s.state.Token
}

// Snapshot returns the current state
func (s *Session[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
