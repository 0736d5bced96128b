package link

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"sync"
	"testing"
	"time"
)

type RadioMock struct {
	mu           sync.Mutex
	associations int
	linkLocal    int
	err          error
}

func (r *RadioMock) Associate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.associations++
	return r.err
}

func (r *RadioMock) EnableLinkLocal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.linkLocal++
	return r.err
}

func (r *RadioMock) calls() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.associations, r.linkLocal
}

func TestSupervisorHandle(t *testing.T) {
	tt := []struct {
		name         string
		events       []EventKind
		associations int
		linkLocal    int
		ipv4, ipv6   bool
	}{
		{"start associates", []EventKind{StationStart}, 1, 0, false, false},
		{"associated enables link-local", []EventKind{StationAssociated}, 0, 1, false, false},
		{"ipv4", []EventKind{GotIPv4}, 0, 0, true, false},
		{"ipv6", []EventKind{GotIPv6}, 0, 0, false, true},
		{
			"full bring-up",
			[]EventKind{StationStart, StationAssociated, GotIPv4, GotIPv6},
			1, 1, true, true,
		},
		{
			"disassociation clears and reassociates",
			[]EventKind{StationStart, StationAssociated, GotIPv4, GotIPv6, StationDisassociated},
			2, 1, false, false,
		},
		{"unknown kind is ignored", []EventKind{EventKind(42)}, 0, 0, false, false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			radio := &RadioMock{}
			state := NewState()
			s := NewSupervisor(radio, state)

			for _, k := range tc.events {
				s.Handle(Event{Kind: k})
			}

			associations, linkLocal := radio.calls()
			assert.Equal(t, tc.associations, associations)
			assert.Equal(t, tc.linkLocal, linkLocal)
			ipv4, ipv6 := state.Snapshot()
			assert.Equal(t, tc.ipv4, ipv4)
			assert.Equal(t, tc.ipv6, ipv6)
		})
	}
}

func TestSupervisorHandle_RadioErrorsAreSwallowed(t *testing.T) {
	radio := &RadioMock{err: errors.New("radio is off")}
	state := NewState()
	s := NewSupervisor(radio, state)

	assert.NotPanics(t, func() {
		s.Handle(Event{Kind: StationStart})
		s.Handle(Event{Kind: StationAssociated})
		s.Handle(Event{Kind: StationDisassociated})
	})
	associations, _ := radio.calls()
	assert.Equal(t, 2, associations)
}

func TestSupervisorWithSimulator(t *testing.T) {
	sim := NewSimulator()
	state := NewState()
	s := NewSupervisor(sim, state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, sim.Events())

	sim.Start()
	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	require.NoError(t, state.WaitUntilReady(waitCtx))
	assert.Equal(t, 1, sim.Associations())

	sim.Disassociate()
	assert.Eventually(t, func() bool {
		return sim.Associations() == 2
	}, time.Second, 5*time.Millisecond)

	// the simulator comes straight back after a reassociation
	require.NoError(t, state.WaitUntilReady(waitCtx))
}

func TestSupervisorRun_StopsOnClosedSource(t *testing.T) {
	events := make(chan Event)
	s := NewSupervisor(&RadioMock{}, NewState())

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), events)
		close(done)
	}()
	close(events)

	select {
	case <-done:
	case <-time.After(250 * time.Millisecond):
		t.Fatal("supervisor did not stop")
	}
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "got-ipv4 (10.0.0.2)", Event{Kind: GotIPv4, Addr: net.IPv4(10, 0, 0, 2)}.String())
	assert.Equal(t, "station-start", Event{Kind: StationStart}.String())
	assert.Equal(t, "unknown(42)", EventKind(42).String())
}
