//go:build linux && futexsync_futex

package futex

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	futexWait        = 0
	futexWake        = 1
	futexPrivateFlag = 128

	futexWaitPrivate = futexWait | futexPrivateFlag
	futexWakePrivate = futexWake | futexPrivateFlag
)

// Backend names the wait/wake implementation compiled in. Tests report it.
const Backend = "futex"

// Wait blocks the calling goroutine while *addr == val. It may return
// spuriously.
func Wait(addr *uint32, val uint32) {
	_, _, e := unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)), futexWaitPrivate, uintptr(val), 0, 0, 0)
	switch e {
	case 0, unix.EAGAIN, unix.EINTR:
		// EAGAIN: *addr != val at the time of the call.
	default:
		panic(fmt.Sprintf("futexsync: futex wait failed: %v", e))
	}
}

// Wake wakes at most one goroutine blocked in Wait on addr.
func Wake(addr *uint32) {
	wake(addr, 1)
}

// WakeAll wakes every goroutine blocked in Wait on addr.
func WakeAll(addr *uint32) {
	wake(addr, math.MaxInt32)
}

func wake(addr *uint32, n uintptr) {
	_, _, e := unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)), futexWakePrivate, n, 0, 0, 0)
	if e != 0 {
		panic(fmt.Sprintf("futexsync: futex wake failed: %v", e))
	}
}
