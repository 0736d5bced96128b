//go:build !pi

package button

import (
	log "github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"sync"
	"syscall"
	"time"
)

const simulatedPress = 100 * time.Millisecond

var (
	simulated   []*gpiotest.Pin
	simulatedMu sync.Mutex
	simulator   sync.Once
)

// OpenInput returns a simulated, released input. SIGHUP presses the first opened input
// and SIGUSR1 the second.
func OpenInput(name string) (Input, error) {
	log.Infof("Simulating button %s", name)
	pin := &gpiotest.Pin{N: name, L: gpio.High}

	simulatedMu.Lock()
	simulated = append(simulated, pin)
	simulatedMu.Unlock()

	simulator.Do(func() {
		go simulateButtons()
	})
	return pin, nil
}

func simulateButtons() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGUSR1)

	for sig := range sigChan {
		i := 0
		if sig == syscall.SIGUSR1 {
			i = 1
		}

		simulatedMu.Lock()
		if i >= len(simulated) {
			simulatedMu.Unlock()
			continue
		}
		pin := simulated[i]
		simulatedMu.Unlock()

		log.Debugf("Simulating press of %s", pin.N)
		pin.Out(gpio.Low)
		time.Sleep(simulatedPress)
		pin.Out(gpio.High)
	}
}
