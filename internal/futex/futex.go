// Package futex provides the wait/wake primitive the locks in futexsync are
// built on: block while a 32-bit word holds an expected value, and wake one or
// all goroutines blocked on that word.
//
// By default waiters are parked in a Table keyed by the word's address, so a
// blocked goroutine costs no OS thread. On Linux, building with the
// futexsync_futex tag sends the calls straight to the futex(2) system call
// with FUTEX_PRIVATE_FLAG set instead; every goroutine blocked there holds an
// OS thread, and the runtime aborts the process past 10000 threads
// (runtime/debug.SetMaxThreads).
//
// Wait may return spuriously. Callers must re-check their condition in a loop.
package futex
