package session

import (
	"errors"
	"fmt"
	"sync"
)

var ErrNotConnected = errors.New("not connected")

// Handle publishes the live socket of the session to senders. Only the session writes
// it. Senders that race a teardown get a write error, never a stale unguarded value.
type Handle struct {
	mu   sync.RWMutex
	sock Socket
}

func (h *Handle) Publish(s Socket) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sock = s
}

func (h *Handle) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sock = nil
}

func (h *Handle) Connected() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.sock != nil
}

// Send writes a single byte to the published socket. It returns ErrNotConnected
// without touching the network when nothing is published.
func (h *Handle) Send(b byte) error {
	h.mu.RLock()
	sock := h.sock
	h.mu.RUnlock()

	if sock == nil {
		return ErrNotConnected
	}
	if _, err := sock.Write([]byte{b}); err != nil {
		return fmt.Errorf("send %q: %w", b, err)
	}
	return nil
}
