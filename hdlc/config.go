// Package hdlc implements the HDLC link-layer controller: a full-duplex,
// sliding-window, stop-and-retransmit protocol engine that multiplexes an
// application send/receive API onto a sequenced stream of frames exchanged
// through a protocol.Codec over a transport.ReadWriter.
package hdlc

import "time"

// MinSendingTimeout is the floor below which SetSendingTimeout silently
// refuses to apply a new value.
const MinSendingTimeout = 500 * time.Millisecond

// DefaultWindow, DefaultSendingTimeout, DefaultFramesQueueSize and
// DefaultFCSNack are the engine's documented defaults, applied by
// DefaultConfig. normalize applies DefaultWindow, DefaultSendingTimeout and
// DefaultPollInterval to unset fields; FCSNack is taken as given.
const (
	DefaultWindow          = 3
	DefaultSendingTimeout  = 2 * time.Second
	DefaultFramesQueueSize = 0
	DefaultFCSNack         = true
	// DefaultPollInterval is the Receiver's idle-poll cadence between read
	// attempts when nothing is available from the transport.
	DefaultPollInterval = 200 * time.Microsecond
)

// Config carries every knob the controller exposes. New replaces zero-value
// SendingTimeout, Window and PollInterval fields with their defaults; a
// zero-value FCSNack (false) disables NACKs.
type Config struct {
	// SendingTimeout is the per-sender retransmission interval. Values
	// below MinSendingTimeout are rejected (see SetSendingTimeout).
	SendingTimeout time.Duration `env:"HDLC_SENDING_TIMEOUT, default=2s"`

	// Window bounds the number of outstanding (unacked) senders. Values
	// at or above protocol.MaxSeqNo risk sequence-number collisions and
	// are accepted but logged.
	Window int `env:"HDLC_WINDOW, default=3"`

	// FramesQueueSize bounds the inbound queue; 0 means unbounded.
	FramesQueueSize int `env:"HDLC_FRAMES_QUEUE_SIZE, default=0"`

	// FCSNack enables emitting a NACK when a frame fails its CRC check.
	FCSNack bool `env:"HDLC_FCS_NACK, default=true"`

	// PollInterval is how long the Receiver idles between read attempts
	// when nothing is available.
	PollInterval time.Duration `env:"HDLC_POLL_INTERVAL, default=200us"`
}

// DefaultConfig returns the controller's documented defaults.
func DefaultConfig() Config {
	return Config{
		SendingTimeout:  DefaultSendingTimeout,
		Window:          DefaultWindow,
		FramesQueueSize: DefaultFramesQueueSize,
		FCSNack:         DefaultFCSNack,
		PollInterval:    DefaultPollInterval,
	}
}

// normalize fills non-positive SendingTimeout, Window and PollInterval fields
// with their defaults, and replaces a SendingTimeout below MinSendingTimeout
// with DefaultSendingTimeout.
func (c Config) normalize() Config {
	out := c
	if out.SendingTimeout < MinSendingTimeout {
		out.SendingTimeout = DefaultSendingTimeout
	}
	if out.Window <= 0 {
		out.Window = DefaultWindow
	}
	if out.PollInterval <= 0 {
		out.PollInterval = DefaultPollInterval
	}
	return out
}
