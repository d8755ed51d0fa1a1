// Package transport provides the byte-oriented transport the hdlc
// controller reads frames from and writes frames to. It is intentionally a
// thin abstraction: the controller only ever needs a non-blocking read of
// whatever bytes are currently available and a write of a complete frame.
package transport

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// ReadWriter is the byte transport the hdlc controller is built on. Read
// returns whatever bytes are currently available without blocking for more
// (an empty slice and a nil error is a valid, expected result when nothing
// has arrived); Write sends a complete frame.
type ReadWriter interface {
	Read() ([]byte, error)
	Write(p []byte) (int, error)
	Close() error
}

// Config holds serial port configuration for NewSerial.
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3").
	Device string

	// Baud rate.
	Baud int

	// ReadTimeout bounds how long a single Read call may block waiting
	// for the first byte; it is what makes Read effectively
	// non-blocking on an idle line.
	ReadTimeout time.Duration
}

// DefaultConfig returns sensible serial defaults.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 50 * time.Millisecond,
	}
}

// serialPort adapts github.com/tarm/serial to the ReadWriter interface.
type serialPort struct {
	port *serial.Port
	buf  [512]byte
}

// NewSerial opens a native serial port as a ReadWriter.
func NewSerial(cfg *Config) (ReadWriter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("transport: config cannot be nil")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: failed to open serial port %s: %w", cfg.Device, err)
	}

	return &serialPort{port: port}, nil
}

// Read returns whatever bytes are currently available, bounded by the
// configured ReadTimeout. A timeout with zero bytes read is reported as a
// nil error and an empty slice, matching the controller's expectation that
// "nothing available yet" is not an error condition.
func (s *serialPort) Read() ([]byte, error) {
	n, err := s.port.Read(s.buf[:])
	if err != nil {
		if isTimeout(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("transport: read failed: %w", err)
	}
	out := make([]byte, n)
	copy(out, s.buf[:n])
	return out, nil
}

func (s *serialPort) Write(p []byte) (int, error) {
	n, err := s.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("transport: write failed: %w", err)
	}
	return n, nil
}

func (s *serialPort) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

// isTimeout reports whether err represents a read timing out with no data,
// which tarm/serial surfaces as a plain timeout error rather than io.EOF.
func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if t, ok := err.(timeouter); ok {
		return t.Timeout()
	}
	return false
}
