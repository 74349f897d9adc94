package futexsync

import (
	"sync"
	"sync/atomic"
)

// SharedLocker is the RWMutex-shaped view of a SeLock, for code written
// against Lock/Unlock/RLock/RUnlock. It gives no access to the protected value.
type SharedLocker interface {
	sync.Locker

	RLock()
	RUnlock()

	// RLocker returns a Locker whose Lock and Unlock take and give up a
	// shared hold through the same SharedLocker.
	RLocker() sync.Locker
}

// Locker returns a new sync.Locker backed by m. The Locker keeps the guard its
// Lock acquired and releases only that guard: Unlock without a preceding Lock
// on the same Locker panics, even if m is held through a guard. It gives no
// access to the protected value.
func (m *Mutex[T]) Locker() sync.Locker {
	return &mutexLocker[T]{m: m}
}

type mutexLocker[T any] struct {
	m *Mutex[T]
	// Written only while the mutex is held.
	g MutexGuard[T]
}

func (l *mutexLocker[T]) Lock() {
	g := l.m.Lock()
	l.g = g
}

func (l *mutexLocker[T]) Unlock() {
	if l.g.m == nil {
		panic("futexsync: unlock of unlocked Locker")
	}
	g := l.g
	l.g = MutexGuard[T]{}
	g.Unlock()
}

// RWLocker returns a new SharedLocker backed by l. Like Mutex.Locker, it
// releases only holds it acquired itself.
func (l *SeLock[T]) RWLocker() SharedLocker {
	return &seLocker[T]{l: l}
}

// Locker returns a new sync.Locker whose Lock and Unlock take and give up an
// exclusive hold on l.
func (l *SeLock[T]) Locker() sync.Locker {
	return &seLocker[T]{l: l}
}

// RLocker returns a new sync.Locker whose Lock and Unlock take and give up a
// shared hold on l.
func (l *SeLock[T]) RLocker() sync.Locker {
	return (*rlocker[T])(&seLocker[T]{l: l})
}

type seLocker[T any] struct {
	l *SeLock[T]
	// Written only while the lock is held exclusively.
	x ExclusiveGuard[T]
	// Shared holds taken through this adapter and not yet given back.
	shared int32
}

func (l *seLocker[T]) Lock() {
	g := l.l.Exclusive()
	l.x = g
}

func (l *seLocker[T]) Unlock() {
	if l.x.l == nil {
		panic("futexsync: unlock of unlocked Locker")
	}
	g := l.x
	l.x = ExclusiveGuard[T]{}
	g.Unlock()
}

func (l *seLocker[T]) RLock() {
	l.l.Shared()
	atomic.AddInt32(&l.shared, 1)
}

func (l *seLocker[T]) RUnlock() {
	for {
		n := atomic.LoadInt32(&l.shared)
		if n == 0 {
			panic("futexsync: RUnlock of unlocked SharedLocker")
		}
		if atomic.CompareAndSwapInt32(&l.shared, n, n-1) {
			break
		}
	}
	// One of the shared holds counted above.
	g := ShareGuard[T]{l: l.l}
	g.Unlock()
}

func (l *seLocker[T]) RLocker() sync.Locker {
	return (*rlocker[T])(l)
}

type rlocker[T any] seLocker[T]

func (r *rlocker[T]) Lock()   { (*seLocker[T])(r).RLock() }
func (r *rlocker[T]) Unlock() { (*seLocker[T])(r).RUnlock() }
