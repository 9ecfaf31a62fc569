//go:build !linux

package peercred

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// Message is one received datagram plus the kernel-reported sender identity.
type Message struct {
	Payload []byte
	Pid     int32
	Uid     uint32
	Gid     uint32
}

// Listener is unavailable off Linux: SO_PASSCRED credential passing over
// datagram sockets is a Linux mechanism.
type Listener struct{}

// Listen always fails on this platform.
func Listen(path string) (*Listener, error) {
	return nil, fmt.Errorf("pid handoff observation is not supported on %s", runtime.GOOS)
}

// SetLogger sets the logger
func (l *Listener) SetLogger(logger *slog.Logger) {}

// Path returns the filesystem path the listener is bound to.
func (l *Listener) Path() string { return "" }

// Recv waits for one datagram.
func (l *Listener) Recv(timeout time.Duration) (*Message, error) {
	return nil, fmt.Errorf("pid handoff observation is not supported on %s", runtime.GOOS)
}

// Close closes the listener.
func (l *Listener) Close() error { return nil }
