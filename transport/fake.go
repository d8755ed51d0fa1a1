package transport

import "sync"

// Fake is an in-memory ReadWriter for tests. Reads drain a scripted
// inbound queue non-blockingly; writes are recorded in order.
type Fake struct {
	mu      sync.Mutex
	inbound [][]byte
	writes  [][]byte
	closed  bool
}

// NewFake returns an empty Fake transport.
func NewFake() *Fake {
	return &Fake{}
}

// Feed appends bytes to be returned by a future Read call, simulating bytes
// arriving from the peer.
func (f *Fake) Feed(p []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(p))
	copy(cp, p)
	f.inbound = append(f.inbound, cp)
}

// Read returns the next scripted chunk, or an empty slice if none is
// queued, matching the non-blocking read contract.
func (f *Fake) Read() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inbound) == 0 {
		return nil, nil
	}
	next := f.inbound[0]
	f.inbound = f.inbound[1:]
	return next, nil
}

// Write records the bytes written, in order.
func (f *Fake) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(p))
	copy(cp, p)
	f.writes = append(f.writes, cp)
	return len(p), nil
}

// Close marks the fake closed; subsequent behavior is unaffected since the
// fake never blocks.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Writes returns a snapshot of every chunk written so far, in order.
func (f *Fake) Writes() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// LastWrite returns the most recent write, or nil if none occurred yet.
func (f *Fake) LastWrite() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return nil
	}
	return f.writes[len(f.writes)-1]
}

// WriteCount returns how many writes have been recorded so far.
func (f *Fake) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}
