package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/callebjorkell/trophy-node/internal/button"
	"github.com/callebjorkell/trophy-node/internal/indicator"
	"github.com/callebjorkell/trophy-node/internal/lcd"
	"github.com/callebjorkell/trophy-node/internal/link"
	"github.com/callebjorkell/trophy-node/internal/neopixel"
	"github.com/callebjorkell/trophy-node/internal/session"
	"github.com/callebjorkell/trophy-node/internal/status"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type colorFormatter struct {
	log.TextFormatter
}

func (f *colorFormatter) Format(entry *log.Entry) ([]byte, error) {
	var levelColor int
	switch entry.Level {
	case log.DebugLevel, log.TraceLevel:
		levelColor = 90 // dark grey
	case log.WarnLevel:
		levelColor = 33 // yellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		levelColor = 91 // bright red
	default:
		levelColor = 39 // default
	}
	return []byte(fmt.Sprintf("\x1b[%dm%s\x1b[0m\n", levelColor, entry.Message)), nil
}

func main() {
	log.SetFormatter(&colorFormatter{})

	if err := RootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

// setupLogFile additionally writes the log to a rotated file. Colors are dropped since
// the file is not a terminal.
func setupLogFile(c *Config) {
	if c.Log.File == "" {
		return
	}
	w := &lumberjack.Logger{
		Filename:   c.Log.File,
		MaxSize:    c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAgeDays,
	}
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FullTimestamp:   true,
		DisableColors:   true,
	})
	log.SetOutput(io.MultiWriter(os.Stdout, w))
	log.Infof("Logging to %s", c.Log.File)
}

// indicatorReset clears every indicator line once the link is up.
type indicatorReset struct {
	group *indicator.Group
}

func (r indicatorReset) LinkReady()         { r.group.ClearAll() }
func (r indicatorReset) Connected(string)   {}
func (r indicatorReset) Disconnected(error) {}

func openIndicators(c *Config, strip *neopixel.LedController) (*indicator.Group, error) {
	open := func(index int, pin string, color uint32) (indicator.Output, error) {
		o, err := indicator.OpenOutput(pin)
		if err != nil {
			return nil, err
		}
		if strip != nil {
			o = indicator.Tee(o, strip.Pixel(index, color))
		}
		return o, nil
	}

	var err error
	g := &indicator.Group{}
	if g.Red, err = open(0, c.Pins.Red, neopixel.Red); err != nil {
		return nil, err
	}
	if g.Yellow, err = open(1, c.Pins.Yellow, neopixel.Yellow); err != nil {
		return nil, err
	}
	if g.Green, err = open(2, c.Pins.Green, neopixel.Green); err != nil {
		return nil, err
	}
	if g.Blue, err = open(3, c.Pins.Blue, neopixel.Blue); err != nil {
		return nil, err
	}
	return g, nil
}

// bootIndicators opens the indicator lines and runs the boot chase to completion. It
// has to finish before the link is started, otherwise the link-ready reset can land in
// the middle of the chase and leave lines lit.
func bootIndicators(ctx context.Context, c *Config, strip *neopixel.LedController, step time.Duration) (*indicator.Group, error) {
	g, err := openIndicators(c, strip)
	if err != nil {
		return nil, err
	}
	g.Chase(ctx, step)
	return g, nil
}

func openButtons(c *Config) ([]*button.Button, error) {
	in1, err := button.OpenInput(c.Pins.Button1)
	if err != nil {
		return nil, err
	}
	in2, err := button.OpenInput(c.Pins.Button2)
	if err != nil {
		return nil, err
	}
	return []*button.Button{
		button.NewButton("button1", '0', in1),
		button.NewButton("button2", '1', in2),
	}, nil
}

func startLink(ctx context.Context, c *Config, state *link.State) {
	if c.Link.Interface == "" {
		sim := link.NewSimulator()
		go link.NewSupervisor(sim, state).Run(ctx, sim.Events())
		sim.Start()
		return
	}

	w := link.NewWatcher(c.Link.Interface, c.Link.PollInterval)
	go w.Run(ctx)
	go link.NewSupervisor(w, state).Run(ctx, w.Events())
}

func startNode(conf *Config) error {
	setupLogFile(conf)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var strip *neopixel.LedController
	if conf.Strip.Enabled {
		var err error
		strip, err = neopixel.NewLedController(conf.Strip.LedCount, conf.Strip.Brightness)
		if err != nil {
			return fmt.Errorf("strip: %w", err)
		}
		defer strip.Close()
	}

	if conf.Lcd.Enabled {
		if err := lcd.InitLCD(conf.Lcd.Pins); err != nil {
			return fmt.Errorf("lcd: %w", err)
		}
		lcd.Reset()
	}

	group, err := bootIndicators(ctx, conf, strip, indicator.DefaultChaseStep)
	if err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	buttons, err := openButtons(conf)
	if err != nil {
		return fmt.Errorf("buttons: %w", err)
	}

	state := link.NewState()
	handle := &session.Handle{}

	startLink(ctx, conf, state)

	sessionConfig := session.Config{
		Endpoint:       conf.Endpoint(),
		BufferSize:     conf.Receive.BufferSize,
		ReceiveTimeout: conf.Receive.Timeout,
		ReceivePause:   conf.Receive.Pause,
	}
	transport := session.TCPTransport{DialTimeout: conf.Server.DialTimeout}
	s := session.New(sessionConfig, state, transport, handle, group)
	notifiers := session.Notifiers{indicatorReset{group: group}}
	if conf.Lcd.Enabled {
		notifiers = append(notifiers, lcd.Status{})
	}
	s.SetNotifier(notifiers)

	go func() {
		err := s.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			// Nothing restarts the session. The buttons keep running against an empty handle.
			log.Errorf("Session ended: %v", err)
		}
	}()

	poller := button.NewPoller(handle, conf.Debounce.Tick, conf.Debounce.Threshold, buttons...)
	go poller.Run(ctx)

	go func() {
		for {
			select {
			case e := <-poller.Events():
				if conf.Lcd.Enabled {
					lcd.PrintLine(lcd.Line2, fmt.Sprintf("Sent %q", e.Code))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	statusServer := status.NewServer(conf.Status.Listen, state, handle, conf.Endpoint())
	go func() {
		if err := statusServer.Listen(); err != nil {
			log.Warn("Status server stopped: ", err)
		}
	}()

	<-signalChan

	cancel()
	statusServer.Close()
	if conf.Lcd.Enabled {
		lcd.Print("  Sleeping...", "")
	}

	log.Info("Done...")
	return nil
}
