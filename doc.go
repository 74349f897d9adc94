// Package futexsync implements a mutex, a condition variable and a
// shared/exclusive lock directly on top of futex-style wait/wake.
//
// Each lock owns the value it protects. The value is reachable only through a
// guard returned by an acquiring call, and releasing the guard is the only way
// to release the lock:
//
//	m := futexsync.NewMutex(0)
//	g := m.Lock()
//	*g.Value()++
//	g.Unlock()
//
// The state of every primitive lives in one or two 32-bit words. The fast
// paths are a single compare-and-swap; goroutines block only inside the
// wait/wake primitive, which parks goroutines in an address-keyed table (or,
// with the futexsync_futex build tag on Linux, calls futex(2) directly).
//
// Misuse (unlocking twice, using a released guard, overflowing the reader
// count) panics. Nothing in this package returns an error.
package futexsync
