package futexsync

import (
	"runtime"
	"sync/atomic"

	"github.com/thetarby/futexsync/internal/futex"
)

const (
	mutexUnlocked  = 0
	mutexLocked    = 1 // locked, nobody waiting
	mutexContended = 2 // locked, at least one goroutine waiting

	mutexSpinLimit = 100
)

// rawMutex is the lock word of a Mutex, split out so CondVar can release and
// re-acquire it without knowing the protected type.
type rawMutex struct {
	state uint32
}

func (m *rawMutex) lock() {
	// Acquire on success. sync/atomic is sequentially consistent, which is at
	// least as strong as every ordering these transitions need.
	if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
		return
	}
	m.lockSlow()
}

func (m *rawMutex) lockSlow() {
	for spin := 0; spin < mutexSpinLimit && atomic.LoadUint32(&m.state) == mutexLocked; spin++ {
		runtime.Gosched()
	}

	if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
		return
	}

	// Having swapped in mutexContended we cannot tell whether others are still
	// queued, so we keep the word at 2 even after we win; the next unlock pays
	// for one possibly unneeded wake.
	for atomic.SwapUint32(&m.state, mutexContended) != mutexUnlocked {
		futex.Wait(&m.state, mutexContended)
	}
}

func (m *rawMutex) tryLock() bool {
	return atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked)
}

func (m *rawMutex) unlock() {
	// Release.
	switch atomic.SwapUint32(&m.state, mutexUnlocked) {
	case mutexContended:
		futex.Wake(&m.state)
	case mutexUnlocked:
		panic("futexsync: unlock of unlocked mutex")
	}
}

// Mutex is a mutual exclusion lock owning a value of type T.
// The zero value is an unlocked Mutex holding the zero T.
//
// A Mutex must not be copied after first use.
type Mutex[T any] struct {
	raw   rawMutex
	value T
}

// NewMutex returns an unlocked Mutex holding value.
func NewMutex[T any](value T) *Mutex[T] {
	return &Mutex[T]{value: value}
}

// Lock blocks until the mutex is available and returns the guard granting
// access to the value. Locking a mutex already held by the caller blocks
// forever.
func (m *Mutex[T]) Lock() MutexGuard[T] {
	m.raw.lock()
	return MutexGuard[T]{m: m}
}

// TryLock acquires the mutex only if it is free right now.
func (m *Mutex[T]) TryLock() (MutexGuard[T], bool) {
	if !m.raw.tryLock() {
		return MutexGuard[T]{}, false
	}
	return MutexGuard[T]{m: m}, true
}

// With runs fn with the mutex held. The mutex is released when fn returns or
// panics.
func (m *Mutex[T]) With(fn func(v *T)) {
	g := m.Lock()
	defer g.Unlock()
	fn(g.Value())
}

// MutexGuard is proof that its holder owns a Mutex. Exactly one live guard
// exists per acquisition. After Unlock the guard is spent.
type MutexGuard[T any] struct {
	m *Mutex[T]
}

func (g *MutexGuard[T]) mutex() *Mutex[T] {
	if g.m == nil {
		panic("futexsync: use of released mutex guard")
	}
	return g.m
}

// Value returns the protected value. The pointer must not be used after the
// guard is unlocked.
func (g *MutexGuard[T]) Value() *T {
	return &g.mutex().value
}

// Unlock releases the mutex, waking one blocked goroutine if any are waiting.
func (g *MutexGuard[T]) Unlock() {
	m := g.mutex()
	g.m = nil
	m.raw.unlock()
}

func (g *MutexGuard[T]) lockWord() *rawMutex {
	return &g.mutex().raw
}
