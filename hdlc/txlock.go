package hdlc

import "sync"

// txLock is the single gate for bytes reaching the transport: the
// Controller, the Receiver and every Sender share one instance by
// reference, per the redesign note calling for an explicit
// shared-ownership wrapper rather than a bare mutex passed around and
// risked being copied.
type txLock struct {
	mu sync.Mutex
}

func newTxLock() *txLock { return &txLock{} }

func (t *txLock) Lock()   { t.mu.Lock() }
func (t *txLock) Unlock() { t.mu.Unlock() }
