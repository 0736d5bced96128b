package main

import (
	"errors"
	"fmt"
	"github.com/callebjorkell/trophy-node/internal/button"
	"github.com/callebjorkell/trophy-node/internal/lcd"
	"github.com/callebjorkell/trophy-node/internal/neopixel"
	"github.com/callebjorkell/trophy-node/internal/session"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	defaultConfigFile   = "config.yaml"
	defaultHost         = "192.168.1.107"
	defaultPort         = 2000
	defaultReceivePause = 10 * time.Millisecond
	defaultStatusListen = ":8090"
	defaultLogMaxSize   = 10
	defaultLogBackups   = 3
	defaultLogMaxAge    = 28
)

type Config struct {
	Server struct {
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port"`
		DialTimeout time.Duration `yaml:"dialTimeout"`
	} `yaml:"server"`
	Link struct {
		Interface    string        `yaml:"interface"`
		PollInterval time.Duration `yaml:"pollInterval"`
	} `yaml:"link"`
	Pins struct {
		Red     string `yaml:"red"`
		Yellow  string `yaml:"yellow"`
		Green   string `yaml:"green"`
		Blue    string `yaml:"blue"`
		Button1 string `yaml:"button1"`
		Button2 string `yaml:"button2"`
	} `yaml:"pins"`
	Debounce struct {
		Tick      time.Duration `yaml:"tick"`
		Threshold int           `yaml:"threshold"`
	} `yaml:"debounce"`
	Receive struct {
		BufferSize int           `yaml:"bufferSize"`
		Timeout    time.Duration `yaml:"timeout"`
		Pause      time.Duration `yaml:"pause"`
	} `yaml:"receive"`
	Status struct {
		Listen string `yaml:"listen"`
	} `yaml:"status"`
	Strip struct {
		Enabled    bool `yaml:"enabled"`
		LedCount   int  `yaml:"ledCount"`
		Brightness int  `yaml:"brightness"`
	} `yaml:"strip"`
	Lcd struct {
		Enabled bool     `yaml:"enabled"`
		Pins    lcd.Pins `yaml:"pins"`
	} `yaml:"lcd"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMB"`
		MaxBackups int    `yaml:"maxBackups"`
		MaxAgeDays int    `yaml:"maxAgeDays"`
	} `yaml:"log"`
}

func (c Config) Endpoint() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func readConfig(file string) (*Config, error) {
	content, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) && file == defaultConfigFile {
		log.Warnf("No %s found. Using defaults.", file)
		return parseConfig(nil)
	}
	if err != nil {
		return nil, err
	}
	return parseConfig(content)
}

func parseConfig(content []byte) (*Config, error) {
	c := &Config{}
	err := yaml.Unmarshal(content, c)
	if err != nil {
		return nil, err
	}

	applyDefaults(c)

	if net.ParseIP(c.Server.Host) == nil {
		return nil, fmt.Errorf("server host must be an IP address, got %q", c.Server.Host)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return nil, fmt.Errorf("server port %d is out of range", c.Server.Port)
	}
	if c.Debounce.Tick < 0 {
		return nil, fmt.Errorf("debounce tick cannot be negative")
	}
	if c.Debounce.Threshold < 0 {
		return nil, fmt.Errorf("debounce threshold cannot be negative")
	}
	if c.Receive.BufferSize == 1 || c.Receive.BufferSize < 0 {
		return nil, fmt.Errorf("receive buffer must hold at least 2 bytes")
	}
	if c.Receive.Timeout < 0 || c.Receive.Pause < 0 {
		return nil, fmt.Errorf("receive timeout and pause cannot be negative")
	}
	if c.Strip.Enabled && c.Strip.LedCount < 4 {
		return nil, fmt.Errorf("strip needs at least 4 leds, got %d", c.Strip.LedCount)
	}
	if c.Strip.Brightness < 0 || c.Strip.Brightness > 255 {
		return nil, fmt.Errorf("strip brightness %d is out of range", c.Strip.Brightness)
	}
	if err := checkPins(c); err != nil {
		return nil, err
	}

	return c, nil
}

func applyDefaults(c *Config) {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}

	p := &c.Pins
	for _, pin := range []struct {
		name *string
		def  string
	}{
		{&p.Red, "GPIO22"},
		{&p.Yellow, "GPIO23"},
		{&p.Green, "GPIO17"},
		{&p.Blue, "GPIO5"},
		{&p.Button1, "GPIO15"},
		{&p.Button2, "GPIO20"},
	} {
		if *pin.name == "" {
			*pin.name = pin.def
		}
	}

	if c.Debounce.Tick == 0 {
		c.Debounce.Tick = button.DefaultTick
	}
	if c.Debounce.Threshold == 0 {
		c.Debounce.Threshold = button.DefaultThreshold
	}
	if c.Receive.BufferSize == 0 {
		c.Receive.BufferSize = session.DefaultBufferSize
	}
	if c.Receive.Pause == 0 {
		c.Receive.Pause = defaultReceivePause
	}
	if c.Status.Listen == "" {
		c.Status.Listen = defaultStatusListen
	}
	if c.Strip.LedCount == 0 {
		c.Strip.LedCount = neopixel.DefaultLedCount
	}
	if c.Strip.Brightness == 0 {
		c.Strip.Brightness = neopixel.DefaultBrightness
	}
	if c.Lcd.Pins == (lcd.Pins{}) {
		c.Lcd.Pins = lcd.DefaultPins()
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = defaultLogMaxSize
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = defaultLogBackups
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = defaultLogMaxAge
	}
}

// checkPins makes sure no line is claimed twice.
func checkPins(c *Config) error {
	names := []string{
		c.Pins.Red, c.Pins.Yellow, c.Pins.Green, c.Pins.Blue, c.Pins.Button1, c.Pins.Button2,
	}
	if c.Lcd.Enabled {
		names = append(names, c.Lcd.Pins.Names()...)
	}

	seen := make(map[string]bool)
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("pin names cannot be empty")
		}
		if seen[n] {
			return fmt.Errorf("pin %s is used more than once", n)
		}
		seen[n] = true
	}
	return nil
}
