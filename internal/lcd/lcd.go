//go:build pi

package lcd

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"time"
)

var (
	registerSelection gpio.PinIO
	clockEdge         gpio.PinIO
	dataPins          [4]gpio.PinIO
)

func init() {
	if _, err := host.Init(); err != nil {
		logrus.Fatalln("Unable to initialize periph:", err)
	}
}

// InitLCD initializes all the LCD pins
func InitLCD(p Pins) error {
	logrus.Infoln("Initializing LCD")
	pins := make([]gpio.PinIO, 0, 6)
	for _, name := range p.Names() {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return fmt.Errorf("no such pin: %s", name)
		}
		pins = append(pins, pin)
	}
	registerSelection = pins[0]
	clockEdge = pins[1]
	copy(dataPins[:], pins[2:])

	sendByte(0x33, command)
	sendByte(0x32, command)
	sendByte(0x28, command)
	sendByte(0x0C, command)
	sendByte(0x06, command)
	sendByte(0x01, command)
	return nil
}

func write(l Line, msg string) {
	if registerSelection == nil {
		return
	}
	sendByte(byte(l), command)
	for i := 0; i < lineWidth; i++ {
		sendByte(msg[i], character)
	}
}

func sendByte(bits byte, mode gpio.Level) {
	registerSelection.Out(mode)
	pulseByte(bits, 0x10)
	pulseByte(bits, 0x01)
}

func pulseByte(bits, mask byte) {
	for i, pin := range dataPins {
		pin.Out(gpio.Low)
		if bits&(mask<<uint(i)) != 0 {
			pin.Out(gpio.High)
		}
	}
	time.Sleep(signalDelay)
	clockEdge.Out(gpio.High)
	time.Sleep(signalPulse)
	clockEdge.Out(gpio.Low)
	time.Sleep(signalDelay)
}
