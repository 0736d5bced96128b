package link

import (
	log "github.com/sirupsen/logrus"
	"net"
	"sync"
)

// Simulator is a Radio that associates instantly and hands out fixed addresses. It is
// used when no network interface is configured, and in tests.
type Simulator struct {
	events chan Event
	ipv4   net.IP
	ipv6   net.IP

	mu           sync.Mutex
	associations int
}

func NewSimulator() *Simulator {
	return &Simulator{
		events: make(chan Event, 16),
		ipv4:   net.IPv4(192, 168, 1, 50),
		ipv6:   net.ParseIP("fe80::1"),
	}
}

func (s *Simulator) Events() <-chan Event {
	return s.events
}

// Start powers up the simulated station.
func (s *Simulator) Start() {
	go s.emit(Event{Kind: StationStart})
}

// Disassociate drops the simulated station off the network.
func (s *Simulator) Disassociate() {
	go s.emit(Event{Kind: StationDisassociated})
}

func (s *Simulator) Associate() error {
	s.mu.Lock()
	s.associations++
	s.mu.Unlock()

	log.Debug("simulator: associating")
	go s.emit(Event{Kind: StationAssociated}, Event{Kind: GotIPv4, Addr: s.ipv4})
	return nil
}

func (s *Simulator) EnableLinkLocal() error {
	go s.emit(Event{Kind: GotIPv6, Addr: s.ipv6})
	return nil
}

func (s *Simulator) Associations() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.associations
}

func (s *Simulator) emit(events ...Event) {
	for _, e := range events {
		s.events <- e
	}
}
