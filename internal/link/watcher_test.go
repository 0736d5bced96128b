package link

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"net"
	"sync"
	"testing"
	"time"
)

var (
	testIPv4 = net.IPv4(192, 168, 1, 50).To4()
	testIPv6 = net.ParseIP("fe80::1")
)

func kinds(events []Event) []EventKind {
	var k []EventKind
	for _, e := range events {
		k = append(k, e.Kind)
	}
	return k
}

func TestTransitions(t *testing.T) {
	tt := []struct {
		name     string
		prev     ifaceInfo
		next     ifaceInfo
		expected []EventKind
	}{
		{"nothing happens while down", ifaceInfo{}, ifaceInfo{}, nil},
		{"interface comes up", ifaceInfo{}, ifaceInfo{up: true}, []EventKind{StationAssociated}},
		{
			"comes up with both addresses",
			ifaceInfo{},
			ifaceInfo{up: true, ipv4: testIPv4, ipv6: testIPv6},
			[]EventKind{StationAssociated, GotIPv4, GotIPv6},
		},
		{
			"ipv6 arrives later",
			ifaceInfo{up: true, ipv4: testIPv4},
			ifaceInfo{up: true, ipv4: testIPv4, ipv6: testIPv6},
			[]EventKind{GotIPv6},
		},
		{
			"steady state",
			ifaceInfo{up: true, ipv4: testIPv4, ipv6: testIPv6},
			ifaceInfo{up: true, ipv4: testIPv4, ipv6: testIPv6},
			nil,
		},
		{
			"interface goes down",
			ifaceInfo{up: true, ipv4: testIPv4, ipv6: testIPv6},
			ifaceInfo{},
			[]EventKind{StationDisassociated},
		},
		{
			"address lost while up",
			ifaceInfo{up: true, ipv4: testIPv4, ipv6: testIPv6},
			ifaceInfo{up: true, ipv4: testIPv4},
			[]EventKind{StationDisassociated, StationAssociated, GotIPv4},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, kinds(transitions(tc.prev, tc.next)))
		})
	}
}

func TestWatcherRun(t *testing.T) {
	states := []ifaceInfo{
		{},
		{up: true},
		{up: true, ipv4: testIPv4, ipv6: testIPv6},
	}
	var mu sync.Mutex
	polls := 0

	w := NewWatcher("wlan0", time.Millisecond)
	w.lookup = func(name string) (ifaceInfo, error) {
		mu.Lock()
		defer mu.Unlock()
		if polls >= len(states) {
			return states[len(states)-1], nil
		}
		s := states[polls]
		polls++
		if !s.up {
			return s, errors.New("no such interface")
		}
		return s, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	var got []EventKind
	timeout := time.After(time.Second)
	for len(got) < 4 {
		select {
		case e := <-w.Events():
			got = append(got, e.Kind)
		case <-timeout:
			t.Fatalf("timed out, got %v", got)
		}
	}
	assert.Equal(t, []EventKind{StationStart, StationAssociated, GotIPv4, GotIPv6}, got)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-w.Events()
		return !open
	}, time.Second, time.Millisecond)
}

func TestWatcherFeedsSupervisor(t *testing.T) {
	w := NewWatcher("wlan0", time.Millisecond)
	w.lookup = func(name string) (ifaceInfo, error) {
		return ifaceInfo{up: true, ipv4: testIPv4, ipv6: testIPv6}, nil
	}
	state := NewState()
	s := NewSupervisor(w, state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	go s.Run(ctx, w.Events())

	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	assert.NoError(t, state.WaitUntilReady(waitCtx))
}

func TestWatcherRun_AddressErrorKeepsState(t *testing.T) {
	full := ifaceInfo{up: true, ipv4: testIPv4, ipv6: testIPv6}
	var mu sync.Mutex
	polls := 0

	w := NewWatcher("wlan0", time.Millisecond)
	w.lookup = func(name string) (ifaceInfo, error) {
		mu.Lock()
		defer mu.Unlock()
		polls++
		if polls == 2 {
			return ifaceInfo{up: true}, errors.New("address dump failed")
		}
		return full, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	var got []EventKind
	timeout := time.After(50 * time.Millisecond)
	for done := false; !done; {
		select {
		case e := <-w.Events():
			got = append(got, e.Kind)
		case <-timeout:
			done = true
		}
	}

	mu.Lock()
	assert.Greater(t, polls, 2, "the failing poll must have happened")
	mu.Unlock()
	assert.Equal(t, []EventKind{StationStart, StationAssociated, GotIPv4, GotIPv6}, got)
}
