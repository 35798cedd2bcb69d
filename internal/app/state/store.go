package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStoreClosed is returned by Update after Close.
var ErrStoreClosed = errors.New("state store closed")

type updateRequest struct {
	fn   Update
	done chan AppState
}

// Store serializes every state change through a single update channel.
type Store struct {
	updates   chan updateRequest
	current   atomic.Pointer[AppState]
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewStore starts the update loop with initial as the first snapshot.
func NewStore(initial AppState) *Store {
	s := &Store{
		updates: make(chan updateRequest),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	first := initial.Clone()
	s.current.Store(&first)
	go s.run()
	return s
}

func (s *Store) run() {
	defer close(s.stopped)
	for {
		select {
		case req := <-s.updates:
			prev := s.current.Load()
			next := req.fn(prev.Clone()).Clone()
			next.Version = prev.Version + 1
			s.current.Store(&next)
			req.done <- next.Clone()
		case <-s.quit:
			return
		}
	}
}

// Update applies fns in order as one step and returns the resulting snapshot.
// It blocks until the store has applied them, so callers observe their own writes.
func (s *Store) Update(ctx context.Context, fns ...Update) (AppState, error) {
	req := updateRequest{
		fn: func(st AppState) AppState {
			for _, fn := range fns {
				st = fn(st)
			}
			return st
		},
		done: make(chan AppState, 1),
	}
	select {
	case s.updates <- req:
	case <-s.quit:
		return s.Snapshot(), ErrStoreClosed
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
	return <-req.done, nil
}

// MustUpdate applies fns ignoring cancellation of the caller.
// Used on exit paths that must land even when the request context is gone.
func (s *Store) MustUpdate(fns ...Update) AppState {
	st, _ := s.Update(context.Background(), fns...)
	return st
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() AppState {
	return s.current.Load().Clone()
}

// Close stops the update loop.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.stopped
	})
}
