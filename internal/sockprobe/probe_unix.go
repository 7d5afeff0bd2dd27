//go:build unix

package sockprobe

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Broken reports whether the connection's descriptor is in an error, hangup,
// or invalid state. The check never blocks: poll runs with a zero timeout.
// Any failure to inspect the descriptor counts as broken (fail closed).
func Broken(sc syscall.Conn) bool {
	raw, err := sc.SyscallConn()
	if err != nil {
		return true
	}

	broken := true
	ctrlErr := raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN | unix.POLLOUT}}
		n, pollErr := unix.Poll(fds, 0)
		if pollErr != nil {
			return
		}
		if n > 0 && fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return
		}
		broken = false
	})

	return ctrlErr != nil || broken
}
