//go:build unix

package crasher

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// SunPathCapacity is the number of path bytes that fit in sockaddr_un with a
// trailing NUL. Addresses are built from at most this many bytes.
func SunPathCapacity() int {
	var raw unix.RawSockaddrUnix
	return len(raw.Path) - 1
}

// TruncateSocketPath clips a socket path to the sockaddr_un capacity. Longer
// paths are silently truncated, not rejected; harnesses rely on this exact
// behavior, so it must not be "fixed" into an error.
func TruncateSocketPath(path string) string {
	if max := SunPathCapacity(); len(path) > max {
		return path[:max]
	}
	return path
}

// SendPid performs the pid handoff: one connect and one send of a single zero
// byte to the datagram socket at path, no retries. The pid itself travels as
// kernel-level sender credentials, not in the payload; a receiver in another
// pid namespace reads it translated into its own namespace. Any failure is
// reported on diag and answered with false. The socket descriptor is closed
// exactly once on every path out of this function.
func SendPid(path string, diag io.Writer) bool {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
	if err != nil {
		fmt.Fprintf(diag, "socket() failed: %v\n", err)
		return false
	}
	defer unix.Close(fd)

	addr := &unix.SockaddrUnix{Name: TruncateSocketPath(path)}
	if err := unix.Connect(fd, addr); err != nil {
		fmt.Fprintf(diag, "connect() failed: %v\n", err)
		return false
	}

	if err := unix.Sendmsg(fd, []byte{0}, nil, nil, 0); err != nil {
		fmt.Fprintf(diag, "sendmsg() failed: %v\n", err)
		return false
	}

	return true
}
