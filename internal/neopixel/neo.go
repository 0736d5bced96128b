package neopixel

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"sync"
)

const (
	DefaultBrightness = 90
	DefaultLedCount   = 4
)

// Colors used when the strip mirrors the indicator lines, in line order.
const (
	Red    uint32 = 0xff0000
	Yellow uint32 = 0xffaa00
	Green  uint32 = 0x00ff00
	Blue   uint32 = 0x0000ff
)

type wsEngine interface {
	Init() error
	Render() error
	Wait() error
	Fini()
	Leds(channel int) []uint32
}

type LedController struct {
	ws wsEngine
	mu sync.Mutex
}

// Pixel returns an indicator output that lights a single LED of the strip in color.
func (l *LedController) Pixel(index int, color uint32) *Pixel {
	return &Pixel{
		l:     l,
		index: index,
		color: color,
	}
}

func (l *LedController) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	leds := l.ws.Leds(0)
	for i := range leds {
		leds[i] = 0
	}
	if err := l.ws.Render(); err != nil {
		log.Warn("Unable to clear strip: ", err)
	}
	l.ws.Fini()
}

func (l *LedController) setColor(index int, color uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	leds := l.ws.Leds(0)
	if index < 0 || index >= len(leds) {
		return fmt.Errorf("led %d out of range (%d leds)", index, len(leds))
	}
	leds[index] = color
	return l.ws.Render()
}

type Pixel struct {
	l     *LedController
	index int
	color uint32
}

func (p *Pixel) Out(level gpio.Level) error {
	c := uint32(0)
	if level == gpio.High {
		c = p.color
	}
	return p.l.setColor(p.index, c)
}

// withBrightness scales every channel of color to light percent. The hardware driver
// scales on its own, so only the simulated engine uses this.
func withBrightness(color uint32, light uint32) uint32 {
	if light > 100 {
		light = 100
	}
	r := (color >> 16 & 0xff) * light / 100
	g := (color >> 8 & 0xff) * light / 100
	b := (color & 0xff) * light / 100
	return r<<16 | g<<8 | b
}
