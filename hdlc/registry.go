package hdlc

import (
	"sync"

	"hdlcd/protocol"
)

// registry maps sequence number to the active sender for that outstanding
// frame, bounded by window. Implemented as a fixed array of protocol.MaxSeqNo
// optional slots rather than a map, since the sequence space is small and
// fixed and a map only adds hash overhead. Admission control (blocking
// while full) lives here behind a condvar rather than a busy-wait.
type registry struct {
	mu      sync.Mutex
	notFull *sync.Cond
	window  int
	slots   [protocol.MaxSeqNo]*sender
	count   int
}

func newRegistry(window int) *registry {
	r := &registry{window: window}
	r.notFull = sync.NewCond(&r.mu)
	return r
}

// waitForRoom blocks until fewer than window senders are outstanding. It
// does not reserve a slot; the caller must insert promptly after this
// returns since another producer could race it (in this engine, Send is
// the only producer, so no such race exists in practice).
func (r *registry) waitForRoom() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.count >= r.window {
		r.notFull.Wait()
	}
}

// insert places s at seq. If a sender already occupies seq (only possible
// when window is misconfigured at or above protocol.MaxSeqNo), it is
// silently replaced.
func (r *registry) insert(seq uint8, s *sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[seq] == nil {
		r.count++
	}
	r.slots[seq] = s
}

// remove deletes and returns the sender at seq, if any.
func (r *registry) remove(seq uint8) (*sender, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slots[seq]
	if s == nil {
		return nil, false
	}
	r.slots[seq] = nil
	r.count--
	r.notFull.Signal()
	return s, true
}

// get returns the sender at seq without removing it.
func (r *registry) get(seq uint8) (*sender, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slots[seq]
	return s, s != nil
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// all returns every currently-registered sender, for Stop to join.
func (r *registry) all() []*sender {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*sender, 0, r.count)
	for _, s := range r.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
