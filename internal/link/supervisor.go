package link

import (
	"context"
	"github.com/callebjorkell/trophy-node/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Supervisor reacts to connectivity lifecycle events by driving the radio and keeping
// State up to date. Handle never blocks.
type Supervisor struct {
	radio Radio
	state *State
}

func NewSupervisor(radio Radio, state *State) *Supervisor {
	return &Supervisor{
		radio: radio,
		state: state,
	}
}

func (s *Supervisor) Handle(e Event) {
	switch e.Kind {
	case StationStart:
		log.Info("Station started")
		s.associate()
	case StationAssociated:
		log.Debug("Station associated. Enabling link-local addressing.")
		if err := s.radio.EnableLinkLocal(); err != nil {
			log.Warnf("Unable to enable link-local addressing: %v", err)
		}
	case GotIPv4:
		log.Infof("Got IPv4 address %v", e.Addr)
		s.state.SetIPv4()
	case GotIPv6:
		log.Infof("Got IPv6 address %v", e.Addr)
		s.state.SetIPv6()
	case StationDisassociated:
		// The station does not reassociate on its own.
		log.Warn("Station disassociated. Reassociating...")
		s.state.Clear()
		s.associate()
	default:
		log.Debugf("Ignoring link event %v", e)
		return
	}

	if s.state.Ready() {
		metrics.LinkReady.Set(1)
	} else {
		metrics.LinkReady.Set(0)
	}
}

// Run feeds events into Handle until the channel is closed or ctx is done.
func (s *Supervisor) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				log.Debug("Link event source closed")
				return
			}
			s.Handle(e)
		}
	}
}

func (s *Supervisor) associate() {
	if err := s.radio.Associate(); err != nil {
		log.Warnf("Association request failed: %v", err)
	}
}
