package futexsync

import (
	"sync/atomic"

	"github.com/thetarby/futexsync/internal/futex"
)

// Guard is a live mutex guard that a CondVar can release and re-acquire.
// It is implemented by *MutexGuard[T].
type Guard interface {
	lockWord() *rawMutex
}

// CondVar is a condition variable for use with Mutex. It is not bound to a
// particular mutex, but waiting on it with two different mutexes at the same
// time is a bug that goes undetected.
//
// The zero value is ready to use. A CondVar must not be copied after first use.
type CondVar struct {
	generation uint32
	// Only lets Notify skip the wake call; correctness rests on generation.
	waiters uint32
}

// NewCondVar returns a CondVar with no waiters.
func NewCondVar() *CondVar {
	return &CondVar{}
}

// NotifyOne wakes one goroutine waiting on c, if there is any.
func (c *CondVar) NotifyOne() {
	if atomic.LoadUint32(&c.waiters) == 0 {
		return
	}
	atomic.AddUint32(&c.generation, 1)
	futex.Wake(&c.generation)
}

// NotifyAll wakes all goroutines waiting on c.
func (c *CondVar) NotifyAll() {
	if atomic.LoadUint32(&c.waiters) == 0 {
		return
	}
	atomic.AddUint32(&c.generation, 1)
	futex.WakeAll(&c.generation)
}

// Wait unlocks the mutex behind g, blocks until notified and locks the mutex
// again before returning; g is live again when Wait returns. Wait can return
// without a notification, so callers re-check their condition in a loop:
//
//	g := m.Lock()
//	for !condition(g.Value()) {
//		c.Wait(&g)
//	}
//	... use g.Value() ...
//	g.Unlock()
func (c *CondVar) Wait(g Guard) {
	m := g.lockWord()

	atomic.AddUint32(&c.waiters, 1)
	gen := atomic.LoadUint32(&c.generation)

	m.unlock()
	// A notify between the snapshot and here changed generation, so this
	// returns immediately instead of sleeping through it.
	futex.Wait(&c.generation, gen)

	atomic.AddUint32(&c.waiters, ^uint32(0))
	m.lock()
}

// WaitUntil calls Wait until done reports true. done is called with the mutex
// held.
func (c *CondVar) WaitUntil(g Guard, done func() bool) {
	for !done() {
		c.Wait(g)
	}
}
