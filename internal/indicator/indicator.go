package indicator

import (
	"context"
	"errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"sync"
	"time"
)

// Codes understood on the wire. The same code space is used for the buttons.
const (
	CodeRed    = '0'
	CodeYellow = '1'
)

const DefaultChaseStep = 200 * time.Millisecond

type Output interface {
	Out(l gpio.Level) error
}

// Tee fans a level out to several outputs.
func Tee(outs ...Output) Output {
	return multiOutput(outs)
}

type multiOutput []Output

func (m multiOutput) Out(l gpio.Level) error {
	var errs []error
	for _, o := range m {
		if err := o.Out(l); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Group drives the four indicator lines.
type Group struct {
	Red    Output
	Yellow Output
	Green  Output
	Blue   Output

	mu sync.Mutex
}

// Apply shows a received chunk. Only the first byte is looked at, so several codes
// arriving in one chunk show as the first of them.
func (g *Group) Apply(chunk []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.set(g.Red, gpio.Low)
	g.set(g.Yellow, gpio.Low)

	if len(chunk) == 0 {
		return
	}
	switch chunk[0] {
	case CodeRed:
		g.set(g.Red, gpio.High)
	case CodeYellow:
		g.set(g.Yellow, gpio.High)
	default:
		log.Debugf("Unknown code %q", chunk[0])
	}
}

func (g *Group) ClearAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, o := range g.all() {
		g.set(o, gpio.Low)
	}
}

// Chase lights blue, green, yellow and red one after the other, step apart. The lines
// are left on.
func (g *Group) Chase(ctx context.Context, step time.Duration) {
	for _, o := range []Output{g.Blue, g.Green, g.Yellow, g.Red} {
		g.mu.Lock()
		g.set(o, gpio.High)
		g.mu.Unlock()

		select {
		case <-time.After(step):
		case <-ctx.Done():
			return
		}
	}
}

func (g *Group) all() []Output {
	return []Output{g.Red, g.Yellow, g.Green, g.Blue}
}

func (g *Group) set(o Output, l gpio.Level) {
	if o == nil {
		return
	}
	if err := o.Out(l); err != nil {
		log.Warnf("Unable to set indicator: %v", err)
	}
}
