//go:build linux

// Package peercred implements the harness side of the pid handoff: a Unix
// datagram listener that learns a sender's pid from kernel credential
// passing. When the sender lives in a different pid namespace, the kernel
// translates the pid into this process's namespace before delivery, which is
// the whole point of the handoff.
package peercred

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Message is one received datagram plus the kernel-reported sender identity.
type Message struct {
	Payload []byte
	Pid     int32
	Uid     uint32
	Gid     uint32
}

// Listener owns a Unix datagram socket with credential passing enabled.
type Listener struct {
	conn   *net.UnixConn
	path   string
	logger *slog.Logger
}

// Listen binds a datagram socket at path and enables SO_PASSCRED so every
// received datagram carries SCM_CREDENTIALS ancillary data. A stale socket
// file at path is removed first.
func Listen(path string) (*Listener, error) {
	if path == "" {
		return nil, fmt.Errorf("socket path cannot be empty")
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale socket %s: %w", path, err)
	}

	addr, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return nil, fmt.Errorf("invalid socket path %s: %w", path, err)
	}

	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", path, err)
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		_ = conn.Close() //nolint:errcheck // cleanup
		return nil, fmt.Errorf("failed to access socket descriptor: %w", err)
	}

	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_PASSCRED, 1)
	}); err != nil {
		sockErr = err
	}
	if sockErr != nil {
		_ = conn.Close() //nolint:errcheck // cleanup
		return nil, fmt.Errorf("failed to enable credential passing: %w", sockErr)
	}

	return &Listener{
		conn:   conn,
		path:   path,
		logger: slog.Default(),
	}, nil
}

// SetLogger sets the logger
func (l *Listener) SetLogger(logger *slog.Logger) {
	l.logger = logger
}

// Path returns the filesystem path the listener is bound to.
func (l *Listener) Path() string {
	return l.path
}

// Recv waits up to timeout for one datagram and returns its payload together
// with the sender credentials. A zero timeout waits forever.
func (l *Listener) Recv(timeout time.Duration) (*Message, error) {
	if timeout > 0 {
		if err := l.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
	}

	buf := make([]byte, 64)
	oob := make([]byte, unix.CmsgSpace(unix.SizeofUcred))

	n, oobn, _, _, err := l.conn.ReadMsgUnix(buf, oob)
	if err != nil {
		return nil, fmt.Errorf("failed to receive datagram: %w", err)
	}

	scms, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return nil, fmt.Errorf("failed to parse control messages: %w", err)
	}

	for i := range scms {
		cred, err := unix.ParseUnixCredentials(&scms[i])
		if err != nil {
			continue
		}
		l.logger.Debug("datagram received",
			slog.Int("bytes", n),
			slog.Int("sender_pid", int(cred.Pid)),
		)
		return &Message{
			Payload: buf[:n],
			Pid:     cred.Pid,
			Uid:     cred.Uid,
			Gid:     cred.Gid,
		}, nil
	}

	return nil, fmt.Errorf("datagram carried no sender credentials")
}

// Close closes the socket and removes its filesystem entry.
func (l *Listener) Close() error {
	err := l.conn.Close()
	if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}
