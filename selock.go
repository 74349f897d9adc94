package futexsync

import (
	"math"
	"sync/atomic"

	"github.com/thetarby/futexsync/internal/futex"
)

const (
	exclusiveLocked = math.MaxUint32

	// Adding a reader at or above this could let state+1 reach exclusiveLocked.
	maxSharedState = math.MaxUint32 - 3
)

// rawSeLock is the lock state of a SeLock.
type rawSeLock struct {
	// Twice the number of shared holders, plus one if a writer is waiting.
	// exclusiveLocked while write locked.
	//
	// Readers may join only while state is even.
	state uint32
	// Incremented to wake up writers.
	exclusiveWake uint32
}

func (l *rawSeLock) lockShared() {
	s := atomic.LoadUint32(&l.state)
	for {
		if s%2 == 0 {
			if s >= maxSharedState {
				panic("futexsync: too many shared holders")
			}
			// Acquire on success.
			if atomic.CompareAndSwapUint32(&l.state, s, s+2) {
				return
			}
			s = atomic.LoadUint32(&l.state)
			continue
		}

		// A writer holds the lock or is waiting for it.
		futex.Wait(&l.state, s)
		s = atomic.LoadUint32(&l.state)
	}
}

func (l *rawSeLock) tryLockShared() bool {
	for {
		s := atomic.LoadUint32(&l.state)
		if s%2 == 1 {
			return false
		}
		if s >= maxSharedState {
			panic("futexsync: too many shared holders")
		}
		if atomic.CompareAndSwapUint32(&l.state, s, s+2) {
			return true
		}
	}
}

func (l *rawSeLock) unlockShared() {
	// Release.
	prev := atomic.AddUint32(&l.state, ^uint32(1)) + 2
	if prev < 2 || prev == exclusiveLocked {
		panic("futexsync: unlock of unlocked shared lock")
	}
	// 3 -> 1: the last reader left and a writer is waiting for exactly that.
	if prev == 3 {
		atomic.AddUint32(&l.exclusiveWake, 1)
		futex.Wake(&l.exclusiveWake)
	}
}

func (l *rawSeLock) lockExclusive() {
	s := atomic.LoadUint32(&l.state)
	for {
		// No readers: take it, whether or not the pending bit is set.
		if s <= 1 {
			if atomic.CompareAndSwapUint32(&l.state, s, exclusiveLocked) {
				return
			}
			s = atomic.LoadUint32(&l.state)
			continue
		}

		// Keep new readers out by making state odd.
		if s%2 == 0 {
			if !atomic.CompareAndSwapUint32(&l.state, s, s+1) {
				s = atomic.LoadUint32(&l.state)
				continue
			}
		}

		// Sleep only while still locked; the wake counter is read first so an
		// unlock in between is not missed.
		w := atomic.LoadUint32(&l.exclusiveWake)
		s = atomic.LoadUint32(&l.state)
		if s >= 2 {
			futex.Wait(&l.exclusiveWake, w)
			s = atomic.LoadUint32(&l.state)
		}
	}
}

func (l *rawSeLock) tryLockExclusive() bool {
	s := atomic.LoadUint32(&l.state)
	for s <= 1 {
		if atomic.CompareAndSwapUint32(&l.state, s, exclusiveLocked) {
			return true
		}
		s = atomic.LoadUint32(&l.state)
	}
	return false
}

func (l *rawSeLock) unlockExclusive() {
	if atomic.SwapUint32(&l.state, 0) != exclusiveLocked {
		panic("futexsync: unlock of unlocked exclusive lock")
	}
	// Either kind of waiter may be able to proceed now.
	atomic.AddUint32(&l.exclusiveWake, 1)
	futex.Wake(&l.exclusiveWake)
	futex.WakeAll(&l.state)
}

// SeLock is a shared/exclusive (reader/writer) lock owning a value of type T.
// Any number of readers may hold it at once, or a single writer. Once a writer
// is waiting, new readers block until it has had its turn.
//
// The zero value is an unlocked SeLock holding the zero T. A SeLock must not
// be copied after first use.
type SeLock[T any] struct {
	raw   rawSeLock
	value T
}

// NewSeLock returns an unlocked SeLock holding value.
func NewSeLock[T any](value T) *SeLock[T] {
	return &SeLock[T]{value: value}
}

// Shared blocks until the lock can be held for reading. It panics if the
// number of concurrent readers would overflow the state word.
func (l *SeLock[T]) Shared() ShareGuard[T] {
	l.raw.lockShared()
	return ShareGuard[T]{l: l}
}

// TryShared acquires a shared hold only if that is possible without blocking.
func (l *SeLock[T]) TryShared() (ShareGuard[T], bool) {
	if !l.raw.tryLockShared() {
		return ShareGuard[T]{}, false
	}
	return ShareGuard[T]{l: l}, true
}

// Exclusive blocks until the lock can be held for writing.
func (l *SeLock[T]) Exclusive() ExclusiveGuard[T] {
	l.raw.lockExclusive()
	return ExclusiveGuard[T]{l: l}
}

// TryExclusive acquires the lock for writing only if it is free right now.
func (l *SeLock[T]) TryExclusive() (ExclusiveGuard[T], bool) {
	if !l.raw.tryLockExclusive() {
		return ExclusiveGuard[T]{}, false
	}
	return ExclusiveGuard[T]{l: l}, true
}

// Read runs fn with a shared hold on the lock. fn must not modify the value.
func (l *SeLock[T]) Read(fn func(v *T)) {
	g := l.Shared()
	defer g.Unlock()
	fn(g.Value())
}

// Write runs fn with the lock held exclusively.
func (l *SeLock[T]) Write(fn func(v *T)) {
	g := l.Exclusive()
	defer g.Unlock()
	fn(g.Value())
}

// ShareGuard is proof of a shared hold on a SeLock.
type ShareGuard[T any] struct {
	l *SeLock[T]
}

func (g *ShareGuard[T]) lock() *SeLock[T] {
	if g.l == nil {
		panic("futexsync: use of released share guard")
	}
	return g.l
}

// Value returns the protected value for reading. Writing through it is a data
// race with other readers.
func (g *ShareGuard[T]) Value() *T {
	return &g.lock().value
}

// Unlock gives up the shared hold. The last reader to leave while a writer is
// waiting wakes that writer.
func (g *ShareGuard[T]) Unlock() {
	l := g.lock()
	g.l = nil
	l.raw.unlockShared()
}

// ExclusiveGuard is proof of an exclusive hold on a SeLock.
type ExclusiveGuard[T any] struct {
	l *SeLock[T]
}

func (g *ExclusiveGuard[T]) lock() *SeLock[T] {
	if g.l == nil {
		panic("futexsync: use of released exclusive guard")
	}
	return g.l
}

// Value returns the protected value.
func (g *ExclusiveGuard[T]) Value() *T {
	return &g.lock().value
}

// Unlock releases the lock and wakes one waiting writer and all waiting readers.
func (g *ExclusiveGuard[T]) Unlock() {
	l := g.lock()
	g.l = nil
	l.raw.unlockExclusive()
}
