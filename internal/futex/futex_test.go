package futex

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestWaitReturnsOnMismatch(t *testing.T) {
	var word uint32 = 7
	done := make(chan struct{})
	go func() {
		Wait(&word, 6)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("%s: Wait blocked although the value differed", Backend)
	}
}

func TestWakeReleasesWaiter(t *testing.T) {
	var word uint32
	done := make(chan struct{})
	go func() {
		for atomic.LoadUint32(&word) == 0 {
			Wait(&word, 0)
		}
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	atomic.StoreUint32(&word, 1)
	Wake(&word)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("%s: waiter not released by Wake", Backend)
	}
}

func TestWakeAllReleasesEveryWaiter(t *testing.T) {
	var word uint32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for atomic.LoadUint32(&word) == 0 {
				Wait(&word, 0)
			}
			return nil
		})
	}

	time.Sleep(10 * time.Millisecond)
	atomic.StoreUint32(&word, 1)
	WakeAll(&word)

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("%s: waiters not released by WakeAll", Backend)
	}
}

func TestWakeWithoutWaiters(t *testing.T) {
	var word uint32
	assert.NotPanics(t, func() {
		Wake(&word)
		WakeAll(&word)
	})
}
