package button

import (
	"context"
	"errors"
	"fmt"
	"github.com/callebjorkell/trophy-node/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"sync"
	"testing"
	"time"
)

func TestSample(t *testing.T) {
	tt := []struct {
		name     string
		samples  []bool
		fired    int
		endState State
	}{
		{"released stays idle", []bool{false, false, false}, 0, Idle},
		{"short press", []bool{true, true, true, true}, 0, Counting},
		{"short press released", []bool{true, true, true, true, false}, 0, Idle},
		{"exactly threshold", []bool{true, true, true, true, true}, 1, Armed},
		{"held long", []bool{true, true, true, true, true, true, true, true, true, true}, 1, Armed},
		{"bounce restarts count", []bool{true, true, true, false, true, true, true, true}, 0, Counting},
		{
			"two presses",
			[]bool{true, true, true, true, true, false, true, true, true, true, true},
			2,
			Armed,
		},
		{"release rearms", []bool{true, true, true, true, true, true, false}, 1, Idle},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			b := NewButton("b", '0', nil)
			fired := 0
			for _, s := range tc.samples {
				if b.Sample(s, DefaultThreshold) {
					fired++
				}
			}
			assert.Equal(t, tc.fired, fired)
			assert.Equal(t, tc.endState, b.State())
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "counting", Counting.String())
	assert.Equal(t, "armed", Armed.String())
	assert.Equal(t, "N/A", State(7).String())
}

type SenderMock struct {
	mu   sync.Mutex
	err  error
	sent []byte
}

func (s *SenderMock) Send(b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, b)
	return s.err
}

func (s *SenderMock) Sent() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.sent...)
}

func hold(p *Poller, pin *gpiotest.Pin, ticks int) {
	pin.Out(gpio.Low)
	for i := 0; i < ticks; i++ {
		p.Poll()
	}
	pin.Out(gpio.High)
	p.Poll()
}

func newTestPoller(sender Sender) (*Poller, *gpiotest.Pin, *gpiotest.Pin) {
	b1 := &gpiotest.Pin{N: "GPIO15", L: gpio.High}
	b2 := &gpiotest.Pin{N: "GPIO0", L: gpio.High}
	p := NewPoller(sender, DefaultTick, DefaultThreshold,
		NewButton("button1", '0', b1),
		NewButton("button2", '1', b2),
	)
	return p, b1, b2
}

func TestPoller_SustainedPress(t *testing.T) {
	for _, ticks := range []int{5, 6, 20, 100} {
		t.Run(fmt.Sprintf("%d ticks", ticks), func(t *testing.T) {
			sender := &SenderMock{}
			p, b1, _ := newTestPoller(sender)

			hold(p, b1, ticks)
			assert.Equal(t, []byte("0"), sender.Sent())
		})
	}
}

func TestPoller_ShortPress(t *testing.T) {
	for ticks := 0; ticks < DefaultThreshold; ticks++ {
		t.Run(fmt.Sprintf("%d ticks", ticks), func(t *testing.T) {
			sender := &SenderMock{}
			p, b1, _ := newTestPoller(sender)

			hold(p, b1, ticks)
			assert.Empty(t, sender.Sent())
		})
	}
}

func TestPoller_ButtonsAreIndependent(t *testing.T) {
	sender := &SenderMock{}
	p, b1, b2 := newTestPoller(sender)

	b1.Out(gpio.Low)
	b2.Out(gpio.Low)
	for i := 0; i < DefaultThreshold; i++ {
		p.Poll()
	}
	b1.Out(gpio.High)
	p.Poll()
	hold(p, b1, DefaultThreshold)

	assert.Equal(t, []byte("010"), sender.Sent())
}

func TestPoller_DisconnectedIsNoop(t *testing.T) {
	handle := &session.Handle{}
	p, b1, b2 := newTestPoller(handle)

	assert.NotPanics(t, func() {
		hold(p, b1, 10)
		hold(p, b2, 10)
	})

	select {
	case e := <-p.Events():
		assert.Equal(t, "button1", e.Button)
	default:
		t.Fatal("the press is still reported locally")
	}
}

func TestPoller_SendErrorsAreDropped(t *testing.T) {
	sender := &SenderMock{err: errors.New("broken pipe")}
	p, b1, _ := newTestPoller(sender)

	hold(p, b1, 10)
	hold(p, b1, 10)
	assert.Equal(t, []byte("00"), sender.Sent())
}

func TestPoller_Run(t *testing.T) {
	sender := &SenderMock{}
	p, _, b2 := newTestPoller(sender)
	p.tick = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	b2.Out(gpio.Low)
	select {
	case e := <-p.Events():
		assert.Equal(t, ButtonEvent{Button: "button2", Code: '1'}, e)
		assert.Equal(t, "Button button2 was pressed (code '1')", e.String())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for press")
	}
	b2.Out(gpio.High)

	cancel()
	select {
	case <-done:
	case <-time.After(250 * time.Millisecond):
		t.Fatal("poller did not stop")
	}
	require.Equal(t, []byte("1"), sender.Sent())
}
