package session

import (
	"context"
	"net"
	"time"
)

// Socket is a single outbound stream connection. A Socket is created unconnected by a
// Transport and only becomes usable after Connect succeeds.
type Socket interface {
	Connect(ctx context.Context) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
	// Shutdown stops the receive side of the connection.
	Shutdown() error
	Close() error
	RemoteAddr() string
}

type Transport interface {
	Open(endpoint string) (Socket, error)
}

// TCPTransport opens IPv4 TCP sockets.
type TCPTransport struct {
	DialTimeout time.Duration
}

func (t TCPTransport) Open(endpoint string) (Socket, error) {
	addr, err := net.ResolveTCPAddr("tcp4", endpoint)
	if err != nil {
		return nil, err
	}
	return &tcpSocket{
		addr:   addr,
		dialer: net.Dialer{Timeout: t.DialTimeout},
	}, nil
}

type tcpSocket struct {
	addr   *net.TCPAddr
	dialer net.Dialer
	conn   net.Conn
}

func (s *tcpSocket) Connect(ctx context.Context) error {
	conn, err := s.dialer.DialContext(ctx, "tcp4", s.addr.String())
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *tcpSocket) Read(p []byte) (int, error) {
	if s.conn == nil {
		return 0, ErrNotConnected
	}
	return s.conn.Read(p)
}

func (s *tcpSocket) Write(p []byte) (int, error) {
	if s.conn == nil {
		return 0, ErrNotConnected
	}
	return s.conn.Write(p)
}

func (s *tcpSocket) SetReadDeadline(t time.Time) error {
	if s.conn == nil {
		return ErrNotConnected
	}
	return s.conn.SetReadDeadline(t)
}

func (s *tcpSocket) Shutdown() error {
	if tcp, ok := s.conn.(*net.TCPConn); ok {
		return tcp.CloseRead()
	}
	return nil
}

func (s *tcpSocket) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *tcpSocket) RemoteAddr() string {
	return s.addr.String()
}
