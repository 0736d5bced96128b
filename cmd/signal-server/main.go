package main

import (
	"bufio"
	"fmt"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
)

// A bench peer for the trophy node. It accepts one node at a time, logs every code the
// node sends and writes lines typed on stdin back to it.

var (
	app    = kingpin.New("signal-server", "Bench server for the trophy node")
	debug  = app.Flag("debug", "Turn on debug logging.").Bool()
	listen = app.Flag("listen", "Address to listen on.").Default(":2000").String()
	echo   = app.Flag("echo", "Send every received code straight back.").Default("true").Bool()
)

func main() {
	if _, err := app.Parse(os.Args[1:]); err != nil {
		fmt.Printf("%v: Try --help\n", err.Error())
		os.Exit(1)
	}

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if *debug {
		log.Info("Enabling debug output...")
		log.SetLevel(log.DebugLevel)
	}

	l, err := net.Listen("tcp4", *listen)
	if err != nil {
		log.Fatal(err)
	}

	s := &server{echo: *echo}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		l.Close()
	}()

	go s.forward(os.Stdin)

	log.Infof("Waiting for nodes on %v", l.Addr())
	if err := s.serve(l); err != nil {
		log.Debug(err)
	}
	s.drop()
	log.Info("Done...")
}

type server struct {
	echo bool

	mu   sync.Mutex
	conn net.Conn
}

func (s *server) serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		// A reconnecting node replaces the old connection.
		s.drop()
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		log.Infof("Node connected from %v", conn.RemoteAddr())
		go s.handle(conn)
	}
}

func (s *server) handle(conn net.Conn) {
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		conn.Close()
	}()

	buf := make([]byte, 128)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if err != io.EOF {
				log.Debugf("Read from %v failed: %v", conn.RemoteAddr(), err)
			}
			log.Infof("Node %v went away", conn.RemoteAddr())
			return
		}
		log.Infof("Received %q", buf[:n])
		if s.echo {
			if _, err := conn.Write(buf[:n]); err != nil {
				log.Warnf("Unable to echo: %v", err)
			}
		}
	}
}

// forward sends each line read from r to the connected node, without the newline.
func (s *server) forward(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := s.send([]byte(line)); err != nil {
			log.Warn(err)
		}
	}
}

func (s *server) send(b []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("no node connected")
	}
	_, err := conn.Write(b)
	return err
}

func (s *server) drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
