//go:build !pi

package indicator

import (
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type mockOutput struct {
	*gpiotest.Pin
}

func (m mockOutput) Out(l gpio.Level) error {
	log.Debugf("indicator: %s -> %v", m.N, l)
	return m.Pin.Out(l)
}

func OpenOutput(name string) (Output, error) {
	log.Infof("Simulating indicator %s", name)
	return mockOutput{Pin: &gpiotest.Pin{N: name}}, nil
}
