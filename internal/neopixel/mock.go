//go:build !pi

package neopixel

import (
	log "github.com/sirupsen/logrus"
)

type mockEngine struct {
	colors     []uint32
	brightness int
}

func (d mockEngine) Init() error {
	return nil
}

func (d mockEngine) Render() error {
	scaled := make([]uint32, len(d.colors))
	for i, c := range d.colors {
		scaled[i] = withBrightness(c, uint32(d.brightness*100/255))
	}
	log.Debugf("neopixel: render %06x", scaled)
	return nil
}

func (d mockEngine) Wait() error {
	return nil
}

func (d mockEngine) Fini() {
	log.Debug("neopixel: fini")
}

func (d mockEngine) Leds(_ int) []uint32 {
	return d.colors
}

func NewLedController(ledCount, brightness int) (*LedController, error) {
	return &LedController{
		ws: mockEngine{
			colors:     make([]uint32, ledCount),
			brightness: brightness,
		},
	}, nil
}
