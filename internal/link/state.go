package link

import (
	"context"
	"sync"
)

// State holds the address acquisition flags of the station interface. The link is
// considered ready once both the IPv4 and the IPv6 address have been acquired.
type State struct {
	mu    sync.Mutex
	ipv4  bool
	ipv6  bool
	ready chan struct{}
}

func NewState() *State {
	return &State{
		ready: make(chan struct{}),
	}
}

func (s *State) SetIPv4() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ipv4 = true
	s.signal()
}

func (s *State) SetIPv6() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ipv6 = true
	s.signal()
}

// Clear drops both flags. Waiters arriving after this block until both addresses have
// been acquired again.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ipv4 && s.ipv6 {
		s.ready = make(chan struct{})
	}
	s.ipv4 = false
	s.ipv6 = false
}

func (s *State) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ipv4 && s.ipv6
}

func (s *State) Snapshot() (ipv4, ipv6 bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ipv4, s.ipv6
}

// WaitUntilReady blocks until both addresses are acquired. There is no timeout, the
// context only exists so the process can shut down.
func (s *State) WaitUntilReady(ctx context.Context) error {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// signal must be called with the lock held.
func (s *State) signal() {
	if !s.ipv4 || !s.ipv6 {
		return
	}
	select {
	case <-s.ready:
		// already closed
	default:
		close(s.ready)
	}
}
