package session

import (
	"context"
	"errors"
	"fmt"
	"github.com/callebjorkell/trophy-node/internal/metrics"
	log "github.com/sirupsen/logrus"
	"io"
	"time"
)

const DefaultBufferSize = 128

var (
	ErrSocket  = errors.New("unable to create socket")
	ErrConnect = errors.New("unable to connect")
)

type Config struct {
	// Endpoint is the fixed host:port of the server.
	Endpoint string
	// BufferSize bounds a single receive. One byte is kept in reserve, so at most
	// BufferSize-1 bytes are delivered per chunk.
	BufferSize int
	// ReceiveTimeout limits a single receive. Zero blocks until data or an error arrives.
	ReceiveTimeout time.Duration
	// ReceivePause is slept after every processed chunk.
	ReceivePause time.Duration
}

// Gate blocks until the network is usable.
type Gate interface {
	WaitUntilReady(ctx context.Context) error
}

// Sink consumes received chunks.
type Sink interface {
	Apply(chunk []byte)
}

type Notifier interface {
	LinkReady()
	Connected(addr string)
	Disconnected(err error)
}

// Notifiers fans notifications out to several notifiers, in order.
type Notifiers []Notifier

func (n Notifiers) LinkReady() {
	for _, o := range n {
		o.LinkReady()
	}
}

func (n Notifiers) Connected(addr string) {
	for _, o := range n {
		o.Connected(addr)
	}
}

func (n Notifiers) Disconnected(err error) {
	for _, o := range n {
		o.Disconnected(err)
	}
}

type nopNotifier struct{}

func (nopNotifier) LinkReady()         {}
func (nopNotifier) Connected(string)   {}
func (nopNotifier) Disconnected(error) {}

// Session keeps a single connection to the server alive and publishes it through a
// Handle.
type Session struct {
	cfg       Config
	gate      Gate
	transport Transport
	handle    *Handle
	sink      Sink
	notifier  Notifier
}

func New(cfg Config, gate Gate, transport Transport, handle *Handle, sink Sink) *Session {
	if cfg.BufferSize < 2 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &Session{
		cfg:       cfg,
		gate:      gate,
		transport: transport,
		handle:    handle,
		sink:      sink,
		notifier:  nopNotifier{},
	}
}

func (s *Session) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

// Run waits for the link once and then keeps the session going. A failure to receive
// tears the socket down and reconnects straight away, without waiting for the link
// again and without any delay. A failure to create or connect a socket ends the
// session for good. Run only returns on those failures or when ctx is done.
func (s *Session) Run(ctx context.Context) error {
	log.Info("Waiting for link...")
	if err := s.gate.WaitUntilReady(ctx); err != nil {
		return err
	}
	log.Info("Link is up")
	s.notifier.LinkReady()

	for {
		sock, err := s.transport.Open(s.cfg.Endpoint)
		if err != nil {
			log.Errorf("Unable to create socket: %v", err)
			return fmt.Errorf("%w: %w", ErrSocket, err)
		}
		log.Debug("Socket created")

		err = sock.Connect(ctx)
		if err != nil {
			s.handle.Clear()
			_ = sock.Close()
			s.notifier.Disconnected(err)
			// TODO: the message promises a restart, but a failed connect ends the session.
			// Decide whether connect failures should go through the reconnect path.
			log.Errorf("Socket unable to connect to %s, restarting: %v", s.cfg.Endpoint, err)
			return fmt.Errorf("%w to %s: %w", ErrConnect, s.cfg.Endpoint, err)
		}
		log.Infof("Successfully connected to %s", sock.RemoteAddr())
		s.handle.Publish(sock)
		metrics.Connected.Set(1)
		s.notifier.Connected(sock.RemoteAddr())

		err = s.receive(ctx, sock)

		s.handle.Clear()
		metrics.Connected.Set(0)
		s.notifier.Disconnected(err)
		log.Warn("Shutting down socket and restarting...")
		if err := sock.Shutdown(); err != nil {
			log.Debugf("Socket shutdown: %v", err)
		}
		if err := sock.Close(); err != nil {
			log.Debugf("Socket close: %v", err)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.Reconnects.Inc()
	}
}

func (s *Session) receive(ctx context.Context, sock Socket) error {
	stop := context.AfterFunc(ctx, func() {
		_ = sock.Close()
	})
	defer stop()

	buf := make([]byte, s.cfg.BufferSize)
	for {
		if s.cfg.ReceiveTimeout > 0 {
			if err := sock.SetReadDeadline(time.Now().Add(s.cfg.ReceiveTimeout)); err != nil {
				return err
			}
		}

		n, err := sock.Read(buf[:len(buf)-1])
		// A clean close from the server is an empty receive. It still reaches the sink,
		// which clears the indicators, before the session reconnects.
		if n > 0 || err == nil || errors.Is(err, io.EOF) {
			chunk := buf[:n]
			log.Infof("Received %d bytes from %s", n, sock.RemoteAddr())
			log.Debugf("%q", chunk)
			metrics.BytesReceived.Add(float64(n))
			s.sink.Apply(chunk)
		}
		if err != nil {
			log.Errorf("Receive failed: %v", err)
			return err
		}

		if s.cfg.ReceivePause > 0 {
			select {
			case <-time.After(s.cfg.ReceivePause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
