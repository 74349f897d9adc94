package futex

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

/* One-slot channel semaphore a parked waiter sleeps on */

type empty struct{}
type semaphore chan empty

// acquire blocks until release has been called.
func (s semaphore) acquire() {
	<-s
}

// release never blocks.
func (s semaphore) release() {
	select {
	case s <- empty{}:
	default:
	}
}

// Prime sized, like the runtime's semaphore table.
const tableSize = 251

type waiter struct {
	addr *uint32
	sem  semaphore
	next *waiter
}

// Waiters are recycled so a blocking Wait does not allocate in steady state.
// A waiter goes back to the pool only after its semaphore has been acquired,
// which leaves the slot empty.
var waiterPool = sync.Pool{
	New: func() interface{} {
		return &waiter{sem: make(semaphore, 1)}
	},
}

type bucket struct {
	mu   sync.Mutex
	head *waiter
	tail *waiter
}

func (b *bucket) push(w *waiter) {
	if b.tail == nil {
		b.head = w
	} else {
		b.tail.next = w
	}
	b.tail = w
}

// Table parks goroutines keyed by the address of a 32-bit word. It gives the
// same guarantees as a futex: the word is compared under the bucket lock, so a
// Wake issued after a waiter's comparison always finds that waiter.
//
// The zero value is ready to use. A Table must not be copied after first use.
type Table struct {
	buckets [tableSize]bucket
}

func (t *Table) bucketFor(addr *uint32) *bucket {
	return &t.buckets[(uintptr(unsafe.Pointer(addr))>>2)%tableSize]
}

// Wait blocks the calling goroutine while *addr == val.
func (t *Table) Wait(addr *uint32, val uint32) {
	b := t.bucketFor(addr)
	b.mu.Lock()
	if atomic.LoadUint32(addr) != val {
		b.mu.Unlock()
		return
	}
	w := waiterPool.Get().(*waiter)
	w.addr = addr
	b.push(w)
	b.mu.Unlock()
	w.sem.acquire()

	// The waker unlinked w before releasing it and does not touch it again.
	w.addr = nil
	waiterPool.Put(w)
}

// Wake wakes at most one goroutine blocked on addr and reports how many were
// woken. The package-level Wake ignores the count; tests use it.
func (t *Table) Wake(addr *uint32) int {
	return t.wake(addr, 1)
}

// WakeAll wakes every goroutine blocked on addr and reports how many were woken.
func (t *Table) WakeAll(addr *uint32) int {
	return t.wake(addr, -1)
}

func (t *Table) wake(addr *uint32, n int) int {
	b := t.bucketFor(addr)
	b.mu.Lock()
	woken := 0
	var prev *waiter
	for w := b.head; w != nil && woken != n; {
		next := w.next
		if w.addr != addr {
			prev = w
			w = next
			continue
		}
		if prev == nil {
			b.head = next
		} else {
			prev.next = next
		}
		if b.tail == w {
			b.tail = prev
		}
		w.next = nil
		w.sem.release()
		woken++
		w = next
	}
	b.mu.Unlock()
	return woken
}
