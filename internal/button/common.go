package button

import (
	"fmt"
	"periph.io/x/conn/v3/gpio"
	"time"
)

const (
	DefaultTick      = 10 * time.Millisecond
	DefaultThreshold = 5
)

// State is the debounce state of a single button.
//
//	Idle     -> Counting  on press
//	Counting -> Armed     when the press has lasted threshold ticks (fires)
//	any      -> Idle      on release
//
// An armed button stays quiet until it has been released.
type State int

const (
	Idle State = iota
	Counting
	Armed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Counting:
		return "counting"
	case Armed:
		return "armed"
	}
	return "N/A"
}

type ButtonEvent struct {
	Button string
	Code   byte
}

func (b ButtonEvent) String() string {
	return fmt.Sprintf("Button %v was pressed (code %q)", b.Button, b.Code)
}

// Input is an active-low digital input. Low means pressed.
type Input interface {
	Read() gpio.Level
}

type Button struct {
	Name  string
	Code  byte
	Input Input

	state State
	count int
}

func NewButton(name string, code byte, in Input) *Button {
	return &Button{
		Name:  name,
		Code:  code,
		Input: in,
	}
}

func (b *Button) State() State {
	return b.state
}

// Sample advances the automaton by one tick and reports whether the press qualified
// on this tick.
func (b *Button) Sample(pressed bool, threshold int) bool {
	if !pressed {
		b.state = Idle
		b.count = 0
		return false
	}

	switch b.state {
	case Idle, Counting:
		b.state = Counting
		b.count++
		if b.count >= threshold {
			b.state = Armed
			b.count = 0
			return true
		}
	}
	return false
}
