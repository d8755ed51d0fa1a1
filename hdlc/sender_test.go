package hdlc

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"hdlcd/protocol"
	"hdlcd/transport"
)

func newTestSender(seq uint8, payload []byte, timeout time.Duration, tw *txLock, rw transport.ReadWriter, cb Callback) *sender {
	log := logrus.NewEntry(logrus.New())
	return newSender(seq, payload, timeout, protocol.NewHDLCCodec(), tw, rw, func() Callback { return cb }, log)
}

func TestSenderTransmitsImmediatelyThenOnSchedule(t *testing.T) {
	tw := newTxLock()
	fake := transport.NewFake()
	s := newTestSender(0, []byte("hi"), 10*time.Millisecond, tw, fake, nil)
	s.start()
	defer s.join()

	require.Eventually(t, func() bool { return fake.WriteCount() >= 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return fake.WriteCount() >= 2 }, time.Second, time.Millisecond)
}

func TestSenderAckStopsIt(t *testing.T) {
	tw := newTxLock()
	fake := transport.NewFake()
	s := newTestSender(0, []byte("hi"), time.Hour, tw, fake, nil)
	s.start()

	require.Eventually(t, func() bool { return fake.WriteCount() >= 1 }, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.ackReceived()
		<-s.done
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ackReceived did not cause the sender to exit")
	}
}

func TestSenderNackTriggersImmediateResend(t *testing.T) {
	tw := newTxLock()
	fake := transport.NewFake()
	s := newTestSender(0, []byte("hi"), time.Hour, tw, fake, nil)
	s.start()
	defer s.join()

	require.Eventually(t, func() bool { return fake.WriteCount() >= 1 }, time.Second, time.Millisecond)
	before := fake.WriteCount()

	s.nackReceived()

	require.Eventually(t, func() bool { return fake.WriteCount() > before }, time.Second, time.Millisecond)
}

func TestSenderInvokesSendCallback(t *testing.T) {
	tw := newTxLock()
	fake := transport.NewFake()

	var got []byte
	calls := 0
	cb := func(payload []byte) {
		got = payload
		calls++
	}

	s := newTestSender(0, []byte("hi"), time.Hour, tw, fake, cb)
	s.start()
	defer s.join()

	require.Eventually(t, func() bool { return calls >= 1 }, time.Second, time.Millisecond)
	require.Equal(t, []byte("hi"), got)
}
