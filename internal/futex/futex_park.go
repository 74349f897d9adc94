//go:build !linux || !futexsync_futex

package futex

// Backend names the wait/wake implementation compiled in. Tests report it.
const Backend = "park"

var table Table

// Wait blocks the calling goroutine while *addr == val. It may return
// spuriously.
func Wait(addr *uint32, val uint32) {
	table.Wait(addr, val)
}

// Wake wakes at most one goroutine blocked in Wait on addr.
func Wake(addr *uint32) {
	table.Wake(addr)
}

// WakeAll wakes every goroutine blocked in Wait on addr.
func WakeAll(addr *uint32) {
	table.WakeAll(addr)
}
