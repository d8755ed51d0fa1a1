package hdlc

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"hdlcd/protocol"
	"hdlcd/transport"
)

// Controller is the facade applications drive: Send/GetData for the data
// plane, Start/Stop for lifecycle, and the Set*Callback setters for
// observing traffic. It owns the sender registry, the inbound queue, and
// the receiver, and exclusively mutates registry membership on insertion
// (the receiver mutates it on removal).
type Controller struct {
	id uuid.UUID

	rw    transport.ReadWriter
	codec protocol.Codec

	cfgMu sync.Mutex
	cfg   Config

	tw  *txLock
	reg *registry
	q   *queue

	nextSeqMu sync.Mutex
	nextSeq   uint8

	callbackMu      sync.Mutex
	sendCallback    Callback
	receiveCallback Callback

	receiver        *receiver
	receiverStarted bool
	startMu         sync.Mutex

	log *logrus.Entry
}

// New constructs a Controller. It fails with *ConfigurationError if rw or
// codec is nil. cfg is normalized: zero-value SendingTimeout, Window and
// PollInterval fields take their documented defaults, and a SendingTimeout below MinSendingTimeout is replaced by the
// default rather than rejected outright (there is no "previous" value yet
// to fall back to at construction time).
func New(rw transport.ReadWriter, codec protocol.Codec, cfg Config) (*Controller, error) {
	if rw == nil {
		return nil, newConfigurationError("read/write transport must not be nil")
	}
	if codec == nil {
		return nil, newConfigurationError("codec must not be nil")
	}

	cfg = cfg.normalize()

	id := uuid.New()
	log := logrus.WithFields(logrus.Fields{
		"component":     "hdlc.Controller",
		"controller_id": id.String(),
	})

	if cfg.Window >= protocol.MaxSeqNo {
		log.WithField("window", cfg.Window).Warn("hdlc: window >= sequence space, sequence numbers may collide")
	}

	c := &Controller{
		id:    id,
		rw:    rw,
		codec: codec,
		cfg:   cfg,
		tw:    newTxLock(),
		reg:   newRegistry(cfg.Window),
		q:     newQueue(cfg.FramesQueueSize),
		log:   log,
	}
	return c, nil
}

// SetSendCallback installs the callback invoked on every outbound DATA
// transmission, including retransmits. It is read fresh by each sender on
// every emission, so changing it after Start affects subsequent frames.
func (c *Controller) SetSendCallback(cb Callback) error {
	if cb == nil {
		return newConfigurationError("send callback must not be nil")
	}
	c.callbackMu.Lock()
	c.sendCallback = cb
	c.callbackMu.Unlock()
	return nil
}

// SetReceiveCallback installs the callback invoked on every inbound DATA
// reception. It must be set before Start: the receiver snapshots it at
// launch, so changes made after Start have no effect. This asymmetry with
// SetSendCallback is preserved deliberately.
func (c *Controller) SetReceiveCallback(cb Callback) error {
	if cb == nil {
		return newConfigurationError("receive callback must not be nil")
	}
	c.callbackMu.Lock()
	c.receiveCallback = cb
	c.callbackMu.Unlock()
	return nil
}

// SetSendingTimeout updates the per-sender retransmission interval. Values
// below MinSendingTimeout are silently ignored, leaving the previous value
// in place.
func (c *Controller) SetSendingTimeout(d time.Duration) {
	if d < MinSendingTimeout {
		return
	}
	c.cfgMu.Lock()
	c.cfg.SendingTimeout = d
	c.cfgMu.Unlock()
}

func (c *Controller) sendingTimeout() time.Duration {
	c.cfgMu.Lock()
	defer c.cfgMu.Unlock()
	return c.cfg.SendingTimeout
}

func (c *Controller) currentSendCallback() Callback {
	c.callbackMu.Lock()
	defer c.callbackMu.Unlock()
	return c.sendCallback
}

// Start launches the receiver task. Calling Start twice is a usage error
// and is not policed.
func (c *Controller) Start() {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.callbackMu.Lock()
	receiveCallback := c.receiveCallback
	c.callbackMu.Unlock()

	c.cfgMu.Lock()
	fcsNack, pollInterval := c.cfg.FCSNack, c.cfg.PollInterval
	c.cfgMu.Unlock()

	c.receiver = newReceiver(c.rw, c.codec, c.tw, c.reg, c.q, receiveCallback, fcsNack, pollInterval, c.log)
	c.receiver.start()
	c.receiverStarted = true
	c.log.Debug("hdlc: controller started")
}

// Stop signals the receiver to exit, joins it, then joins every
// outstanding sender. The receiver is stopped first so no further
// ACKs/NACKs are dispatched while senders are being torn down. Safe to
// call before Start.
func (c *Controller) Stop() error {
	var result *multierror.Error

	c.startMu.Lock()
	receiver := c.receiver
	started := c.receiverStarted
	c.startMu.Unlock()

	if started && receiver != nil {
		receiver.join()
	}

	for _, s := range c.reg.all() {
		s.join()
	}

	if err := c.rw.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	c.log.Debug("hdlc: controller stopped")
	return result.ErrorOrNil()
}

// Send admission-controls a new outbound frame: it blocks until fewer than
// Window senders are outstanding, then assigns the next sequence number,
// starts a sender for it, and returns once the sender is running (not once
// the frame is acknowledged). Under sustained saturation this blocks
// indefinitely — a known, deliberately preserved design choice.
func (c *Controller) Send(payload []byte) {
	c.reg.waitForRoom()

	c.nextSeqMu.Lock()
	seq := c.nextSeq
	c.nextSeq = (c.nextSeq + 1) % protocol.MaxSeqNo
	c.nextSeqMu.Unlock()

	s := newSender(seq, payload, c.sendingTimeout(), c.codec, c.tw, c.rw, c.currentSendCallback, c.log)
	c.reg.insert(seq, s)
	s.start()

	c.log.WithField("seq", seq).Debug("hdlc: sender started")
}

// GetData blocks until an inbound DATA payload is available and returns
// it.
func (c *Controller) GetData() []byte {
	return c.q.pop()
}

// GetSendersNumber returns the number of currently outstanding senders.
func (c *Controller) GetSendersNumber() int {
	return c.reg.len()
}

// ID returns the controller's correlation identifier, used in every log
// line this controller emits.
func (c *Controller) ID() uuid.UUID {
	return c.id
}
