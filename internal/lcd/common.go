package lcd

import (
	"fmt"
	"periph.io/x/conn/v3/gpio"
	"sync"
	"time"
)

type Line byte

func (l Line) String() string {
	switch l {
	case Line1:
		return "L1"
	case Line2:
		return "L2"
	}
	return "N/A"
}

// Pins names the GPIO lines of an HD44780 display wired in 4-bit mode.
type Pins struct {
	RegisterSelect string `yaml:"rs"`
	Clock          string `yaml:"e"`
	Data4          string `yaml:"d4"`
	Data5          string `yaml:"d5"`
	Data6          string `yaml:"d6"`
	Data7          string `yaml:"d7"`
}

func DefaultPins() Pins {
	return Pins{
		RegisterSelect: "GPIO4",
		Clock:          "GPIO18",
		Data4:          "GPIO25",
		Data5:          "GPIO24",
		Data6:          "GPIO27",
		Data7:          "GPIO6",
	}
}

func (p Pins) Names() []string {
	return []string{p.RegisterSelect, p.Clock, p.Data4, p.Data5, p.Data6, p.Data7}
}

const (
	Line1 Line = 0x80
	Line2 Line = 0xC0

	lineWidth   = 16
	character   = gpio.High
	command     = gpio.Low
	signalPulse = 500000 * time.Nanosecond
	signalDelay = 500000 * time.Nanosecond
)

var (
	shownMu sync.Mutex
	shown   = map[Line]string{}
)

// PrintLine shows msg on a line, padded or cut to the display width.
func PrintLine(l Line, msg string) {
	m := fit(msg)

	shownMu.Lock()
	defer shownMu.Unlock()
	shown[l] = m
	write(l, m)
}

func Print(line1, line2 string) {
	PrintLine(Line1, line1)
	PrintLine(Line2, line2)
}

func Clear(l Line) {
	PrintLine(l, "")
}

func Reset() {
	Print("Trophy node", "")
}

// Shown returns what is currently on the display.
func Shown() (string, string) {
	shownMu.Lock()
	defer shownMu.Unlock()
	return shown[Line1], shown[Line2]
}

func fit(msg string) string {
	m := fmt.Sprintf("%-16s", msg)
	return m[:lineWidth]
}

// Status shows the session lifecycle on the display.
type Status struct{}

func (Status) LinkReady() {
	Print("Link up", "Connecting...")
}

func (Status) Connected(addr string) {
	Print("Connected", addr)
}

func (Status) Disconnected(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	Print("Disconnected", msg)
}
