//go:build linux

package diag

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

func collectPlatform(info *Info) {
	if data, err := os.ReadFile("/proc/sys/kernel/core_pattern"); err == nil {
		info.CorePattern = strings.TrimSpace(string(data))
	} else {
		info.Warnings = append(info.Warnings, "cannot read /proc/sys/kernel/core_pattern")
	}

	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CORE, &lim); err == nil {
		info.CoreLimitSoft = lim.Cur
		info.CoreLimitHard = lim.Max
	} else {
		info.Warnings = append(info.Warnings, "cannot read RLIMIT_CORE")
	}

	// The namespace link target (e.g. "pid:[4026531836]") identifies which
	// pid namespace this process observes senders from.
	if target, err := os.Readlink("/proc/self/ns/pid"); err == nil {
		info.PidNamespace = target
	}

	info.PeerCredSupport = probePeerCred()

	if strings.HasPrefix(info.CorePattern, "|") {
		info.Recommendations = append(info.Recommendations,
			"core_pattern pipes to a handler - crash collection depends on that handler",
		)
	}
}

// probePeerCred verifies that a unixgram socket accepts SO_PASSCRED here.
func probePeerCred() bool {
	path := filepath.Join(os.TempDir(), "crashmon-probe.sock")
	_ = os.Remove(path) //nolint:errcheck // stale probe socket

	addr, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return false
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return false
	}
	defer func() {
		_ = conn.Close()    //nolint:errcheck // probe cleanup
		_ = os.Remove(path) //nolint:errcheck // probe cleanup
	}()

	raw, err := conn.SyscallConn()
	if err != nil {
		return false
	}

	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_PASSCRED, 1)
	}); err != nil {
		return false
	}
	return sockErr == nil
}
