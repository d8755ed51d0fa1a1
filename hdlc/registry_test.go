package hdlc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryInsertRemove(t *testing.T) {
	r := newRegistry(3)
	s := &sender{seq: 2}
	r.insert(2, s)
	require.Equal(t, 1, r.len())

	got, ok := r.get(2)
	require.True(t, ok)
	require.Same(t, s, got)

	removed, ok := r.remove(2)
	require.True(t, ok)
	require.Same(t, s, removed)
	require.Equal(t, 0, r.len())

	_, ok = r.remove(2)
	require.False(t, ok)
}

func TestRegistryWaitForRoomBlocksAtWindow(t *testing.T) {
	r := newRegistry(1)
	r.insert(0, &sender{seq: 0})

	unblocked := make(chan struct{})
	go func() {
		r.waitForRoom()
		close(unblocked)
	}()

	select {
	case <-unblocked:
		t.Fatal("waitForRoom returned while registry was full")
	case <-time.After(20 * time.Millisecond):
	}

	r.remove(0)

	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("waitForRoom did not unblock after a slot freed")
	}
}

func TestRegistryAll(t *testing.T) {
	r := newRegistry(3)
	r.insert(0, &sender{seq: 0})
	r.insert(5, &sender{seq: 5})

	all := r.all()
	require.Len(t, all, 2)
}
