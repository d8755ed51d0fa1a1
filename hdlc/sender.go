package hdlc

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"hdlcd/protocol"
	"hdlcd/transport"
)

// sender owns one outstanding outbound DATA frame and its retransmission
// timer. One sender runs per in-flight sequence number. stop and wake are
// kept as two independent channels rather than one: stop is closed at most
// once and must stay readable forever afterward, while wake is a one-shot
// trigger that needs draining so a stale signal doesn't cause a spurious
// extra retransmit later. Collapsing the two would require tagging every
// signal to tell a wake-and-resend apart from a wake-and-exit.
type sender struct {
	seq     uint8
	payload []byte
	timeout time.Duration

	codec protocol.Codec
	tw    *txLock
	rw    transport.ReadWriter

	// sendCallback returns the send callback currently installed on the
	// Controller; read fresh on every emission so a callback change after
	// Start takes effect for subsequent frames.
	sendCallback func() Callback

	stopOnce sync.Once
	stop     chan struct{}
	wake     chan struct{}
	done     chan struct{}

	log *logrus.Entry
}

func newSender(seq uint8, payload []byte, timeout time.Duration, codec protocol.Codec, tw *txLock, rw transport.ReadWriter, sendCallback func() Callback, log *logrus.Entry) *sender {
	return &sender{
		seq:          seq,
		payload:      payload,
		timeout:      timeout,
		codec:        codec,
		tw:           tw,
		rw:           rw,
		sendCallback: sendCallback,
		stop:         make(chan struct{}),
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		log:          log.WithField("seq", seq),
	}
}

func (s *sender) start() {
	go s.run()
}

// run implements the ARMED -> TRANSMITTING -> ARMED loop until STOPPED.
// The first iteration transmits immediately since the initial deadline is
// the zero time, which is already in the past.
func (s *sender) run() {
	defer close(s.done)

	var nextDeadline time.Time
	for {
		d := time.Until(nextDeadline)
		if d < 0 {
			d = 0
		}
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-s.wake:
			if !timer.Stop() {
				<-timer.C
			}
		}
		s.drainWake()

		select {
		case <-s.stop:
			return
		default:
		}

		nextDeadline = time.Now().Add(s.timeout)
		s.transmit()
	}
}

func (s *sender) drainWake() {
	select {
	case <-s.wake:
	default:
	}
}

func (s *sender) signalWake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *sender) transmit() {
	s.tw.Lock()
	defer s.tw.Unlock()

	if cb := s.sendCallback(); cb != nil {
		cb(s.payload)
	}

	frame := s.codec.EncodeFrame(s.payload, protocol.KindData, s.seq)
	if _, err := s.rw.Write(frame); err != nil {
		s.log.WithError(err).Warn("hdlc: sender write failed")
	}
}

// ackReceived informs the sender its frame has been acknowledged; the
// sender exits on its next check. Idempotent.
func (s *sender) ackReceived() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.signalWake()
}

// nackReceived wakes the sender for an immediate resend, preserving its
// seq and payload, then re-arms a fresh deadline.
func (s *sender) nackReceived() {
	s.signalWake()
}

// join sets stop and wake and waits for the goroutine to exit.
func (s *sender) join() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.signalWake()
	<-s.done
}
