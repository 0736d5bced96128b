package button

import (
	"context"
	"errors"
	"github.com/callebjorkell/trophy-node/internal/metrics"
	"github.com/callebjorkell/trophy-node/internal/session"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"time"
)

type Sender interface {
	Send(b byte) error
}

// Poller samples all buttons on a fixed tick and sends the code of every qualifying
// press. It never waits on the network: a press while disconnected is dropped.
type Poller struct {
	buttons   []*Button
	sender    Sender
	tick      time.Duration
	threshold int
	events    chan ButtonEvent
}

func NewPoller(sender Sender, tick time.Duration, threshold int, buttons ...*Button) *Poller {
	if tick <= 0 {
		tick = DefaultTick
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Poller{
		buttons:   buttons,
		sender:    sender,
		tick:      tick,
		threshold: threshold,
		events:    make(chan ButtonEvent, 5),
	}
}

// Events returns qualifying presses. Events are dropped if nobody keeps up.
func (p *Poller) Events() <-chan ButtonEvent {
	return p.events
}

func (p *Poller) Run(ctx context.Context) {
	log.Infoln("Initializing button handler")
	t := time.NewTicker(p.tick)
	defer t.Stop()

	for {
		p.Poll()

		select {
		case <-t.C:
		case <-ctx.Done():
			log.Debug("Stopping button handler")
			return
		}
	}
}

// Poll samples every button once.
func (p *Poller) Poll() {
	for _, b := range p.buttons {
		pressed := b.Input.Read() == gpio.Low
		if b.Sample(pressed, p.threshold) {
			p.dispatch(b)
		}
	}
}

func (p *Poller) dispatch(b *Button) {
	e := ButtonEvent{Button: b.Name, Code: b.Code}
	log.Infof("Event: %v", e)
	metrics.Presses.WithLabelValues(b.Name).Inc()

	select {
	case p.events <- e:
	default:
	}

	err := p.sender.Send(b.Code)
	switch {
	case err == nil:
		metrics.Sent.WithLabelValues(b.Name).Inc()
	case errors.Is(err, session.ErrNotConnected):
		log.Debugf("Not connected. Dropping %q.", b.Code)
		metrics.Dropped.WithLabelValues(b.Name, "disconnected").Inc()
	default:
		log.Warnf("Unable to send %q: %v", b.Code, err)
		metrics.Dropped.WithLabelValues(b.Name, "error").Inc()
	}
}
