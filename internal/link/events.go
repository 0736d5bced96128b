package link

import (
	"fmt"
	"net"
)

type EventKind int

const (
	StationStart EventKind = iota
	StationAssociated
	GotIPv4
	GotIPv6
	StationDisassociated
)

func (k EventKind) String() string {
	switch k {
	case StationStart:
		return "station-start"
	case StationAssociated:
		return "station-associated"
	case GotIPv4:
		return "got-ipv4"
	case GotIPv6:
		return "got-ipv6"
	case StationDisassociated:
		return "station-disassociated"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Event is a single connectivity lifecycle event. Addr is only set for the address
// acquisition events.
type Event struct {
	Kind EventKind
	Addr net.IP
}

func (e Event) String() string {
	if e.Addr != nil {
		return fmt.Sprintf("%v (%v)", e.Kind, e.Addr)
	}
	return e.Kind.String()
}

// Radio is the wireless stack as seen from the supervisor.
type Radio interface {
	// Associate asks the station to (re)join the configured network.
	Associate() error
	// EnableLinkLocal turns on link-local IPv6 addressing for the station.
	EnableLinkLocal() error
}
