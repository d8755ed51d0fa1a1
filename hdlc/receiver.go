package hdlc

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"hdlcd/protocol"
	"hdlcd/transport"
)

// receiver is the single concurrent actor that pulls bytes from the
// transport, decodes frames, and dispatches them: DATA frames are queued
// for the application and ACKed; ACK frames retire the matching sender;
// NACK frames wake the matching sender for an immediate resend.
type receiver struct {
	rw    transport.ReadWriter
	codec protocol.Codec
	tw    *txLock
	reg   *registry
	queue *queue

	receiveCallback Callback // snapshotted at Start; later changes have no effect
	fcsNack         bool
	pollInterval    time.Duration

	stop chan struct{}
	done chan struct{}

	buf []byte

	log *logrus.Entry
}

func newReceiver(rw transport.ReadWriter, codec protocol.Codec, tw *txLock, reg *registry, q *queue, receiveCallback Callback, fcsNack bool, pollInterval time.Duration, log *logrus.Entry) *receiver {
	return &receiver{
		rw:              rw,
		codec:           codec,
		tw:              tw,
		reg:             reg,
		queue:           q,
		receiveCallback: receiveCallback,
		fcsNack:         fcsNack,
		pollInterval:    pollInterval,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
		log:             log,
	}
}

func (r *receiver) start() {
	go r.run()
}

func (r *receiver) run() {
	defer close(r.done)

	for {
		select {
		case <-r.stop:
			return
		default:
		}

		data, err := r.rw.Read()
		if err != nil {
			r.log.WithError(err).Warn("hdlc: receiver read failed")
		} else if len(data) > 0 {
			r.buf = append(r.buf, data...)
		}

		r.drain()

		timer := time.NewTimer(r.pollInterval)
		select {
		case <-timer.C:
		case <-r.stop:
			timer.Stop()
			return
		}
	}
}

// drain decodes and dispatches every complete frame currently buffered.
func (r *receiver) drain() {
	for len(r.buf) > 0 {
		payload, kind, seq, consumed, err := r.codec.DecodeFrame(r.buf)
		if err != nil {
			if errors.Is(err, protocol.ErrNoFrame) {
				return
			}

			var fcsErr *protocol.FCSError
			if errors.As(err, &fcsErr) {
				r.buf = r.buf[consumed:]
				if r.fcsNack {
					r.sendNACK(fcsErr.Seq)
				}
				continue
			}

			// ErrBadKind or any other decode error: drop the frame and
			// keep scanning.
			r.buf = r.buf[consumed:]
			continue
		}

		r.buf = r.buf[consumed:]

		switch kind {
		case protocol.KindData:
			r.handleData(payload, seq)
		case protocol.KindACK:
			r.handleACK(seq)
		case protocol.KindNACK:
			r.handleNACK(seq)
		default:
			// BadKind was already handled above via err; unreachable in
			// practice, kept defensively.
		}
	}
}

// handleData invokes the receive callback, attempts to enqueue the
// payload, and emits the ACK — all under the transmit lock so the ACK for
// frame k is observably ordered after frame k is queued and nothing else
// can interleave. If the queue is full the payload is dropped and the ACK
// is NOT emitted: a peer that never sees the ACK will retransmit, giving
// the queue a chance to drain before the frame is lost for good.
func (r *receiver) handleData(payload []byte, seq uint8) {
	r.tw.Lock()
	defer r.tw.Unlock()

	if r.receiveCallback != nil {
		r.receiveCallback(payload)
	}

	if !r.queue.tryPush(payload) {
		r.log.WithField("seq", seq).Debug("hdlc: inbound queue full, dropping frame")
		return
	}

	ackSeq := (seq + 1) % protocol.MaxSeqNo
	frame := r.codec.EncodeFrame(nil, protocol.KindACK, ackSeq)
	if _, err := r.rw.Write(frame); err != nil {
		r.log.WithError(err).Warn("hdlc: failed to write ACK")
	}
}

// handleACK retires the sender for the frame this ACK confirms. An ACK for
// an unknown sequence (late, duplicate, or bogus) is dropped.
func (r *receiver) handleACK(seq uint8) {
	acked := (seq - 1 + protocol.MaxSeqNo) % protocol.MaxSeqNo
	s, ok := r.reg.remove(acked)
	if !ok {
		return
	}
	s.ackReceived()
}

// handleNACK wakes the sender for an immediate resend. A NACK for an
// unknown sequence is dropped.
func (r *receiver) handleNACK(seq uint8) {
	s, ok := r.reg.get(seq)
	if !ok {
		return
	}
	s.nackReceived()
}

func (r *receiver) sendNACK(seq uint8) {
	r.tw.Lock()
	defer r.tw.Unlock()

	frame := r.codec.EncodeFrame(nil, protocol.KindNACK, seq)
	if _, err := r.rw.Write(frame); err != nil {
		r.log.WithError(err).Warn("hdlc: failed to write NACK")
	}
}

func (r *receiver) join() {
	close(r.stop)
	<-r.done
}
