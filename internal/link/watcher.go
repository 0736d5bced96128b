package link

import (
	"context"
	log "github.com/sirupsen/logrus"
	"net"
	"time"
)

var defaultPollInterval = time.Second

type ifaceInfo struct {
	up   bool
	ipv4 net.IP
	ipv6 net.IP
}

// Watcher derives connectivity lifecycle events from the state of an OS network
// interface. Association itself is left to the OS supplicant, so the Radio methods only
// record the request.
type Watcher struct {
	name     string
	interval time.Duration
	events   chan Event
	lookup   func(name string) (ifaceInfo, error)
}

func NewWatcher(name string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Watcher{
		name:     name,
		interval: interval,
		events:   make(chan Event, 16),
		lookup:   lookupInterface,
	}
}

func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) Associate() error {
	log.Infof("Association requested for %s", w.name)
	return nil
}

func (w *Watcher) EnableLinkLocal() error {
	log.Debugf("Link-local addressing requested for %s", w.name)
	return nil
}

// Run polls the interface until ctx is done. The events channel is closed on return.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	log.Infof("Starting to watch interface %s", w.name)

	if !w.send(ctx, Event{Kind: StationStart}) {
		return
	}

	t := time.NewTicker(w.interval)
	defer t.Stop()

	var last ifaceInfo
	for {
		info, err := w.lookup(w.name)
		switch {
		case err != nil && info.up:
			// The interface is there but its addresses could not be read. Keep the last
			// known state until the next poll.
			log.Debugf("Unable to read addresses of %s: %v", w.name, err)
			info = last
		case err != nil:
			log.Debugf("Unable to read interface %s: %v", w.name, err)
			info = ifaceInfo{}
		}

		for _, e := range transitions(last, info) {
			if !w.send(ctx, e) {
				return
			}
		}
		last = info

		select {
		case <-t.C:
		case <-ctx.Done():
			log.Infof("Stopping watch of %s", w.name)
			return
		}
	}
}

func (w *Watcher) send(ctx context.Context, e Event) bool {
	select {
	case w.events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

// transitions returns the events that move the link from prev to next. Losing an
// address without losing the interface counts as a disassociation, since that is the
// only way the flags are ever cleared.
func transitions(prev, next ifaceInfo) []Event {
	var events []Event

	lost := (prev.ipv4 != nil && next.ipv4 == nil) || (prev.ipv6 != nil && next.ipv6 == nil)
	if prev.up && (!next.up || lost) {
		events = append(events, Event{Kind: StationDisassociated})
		prev = ifaceInfo{}
	}
	if !next.up {
		return events
	}

	if !prev.up {
		events = append(events, Event{Kind: StationAssociated})
	}
	if prev.ipv4 == nil && next.ipv4 != nil {
		events = append(events, Event{Kind: GotIPv4, Addr: next.ipv4})
	}
	if prev.ipv6 == nil && next.ipv6 != nil {
		events = append(events, Event{Kind: GotIPv6, Addr: next.ipv6})
	}
	return events
}

func lookupInterface(name string) (ifaceInfo, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return ifaceInfo{}, err
	}

	info := ifaceInfo{
		up: iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagRunning != 0,
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return info, err
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			if info.ipv4 == nil {
				info.ipv4 = v4
			}
		} else if info.ipv6 == nil {
			info.ipv6 = ipNet.IP
		}
	}
	return info, nil
}
