//go:build windows

package sockprobe

import "syscall"

// Broken always reports false on Windows: there is no portable zero-timeout
// poll here, so the pool relies on its own closed-state bookkeeping instead.
func Broken(_ syscall.Conn) bool {
	return false
}
