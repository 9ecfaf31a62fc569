//go:build linux

package peercred

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crashkit/crashkit/internal/crasher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen_EmptyPath(t *testing.T) {
	_, err := Listen("")
	assert.Error(t, err)
}

func TestListen_ReplacesStaleSocket(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "stale.sock")

	first, err := Listen(sockPath)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// A previous run may leave the socket file behind; binding must still work.
	require.NoError(t, os.WriteFile(sockPath, nil, 0o600))

	second, err := Listen(sockPath)
	require.NoError(t, err)
	defer second.Close() //nolint:errcheck // test cleanup

	assert.Equal(t, sockPath, second.Path())
}

func TestRecv_ReportsSenderPid(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "handoff.sock")

	listener, err := Listen(sockPath)
	require.NoError(t, err)
	defer listener.Close() //nolint:errcheck // test cleanup

	// Same-namespace sender: the kernel-reported pid is simply ours.
	var diag bytes.Buffer
	require.True(t, crasher.SendPid(sockPath, &diag), "handoff failed: %s", diag.String())

	msg, err := listener.Recv(5 * time.Second)
	require.NoError(t, err)

	assert.Equal(t, int32(os.Getpid()), msg.Pid)
	assert.Equal(t, uint32(os.Getuid()), msg.Uid)
	require.Len(t, msg.Payload, DefaultPayloadSize)
	assert.Equal(t, byte(0), msg.Payload[0])
}

func TestRecv_Timeout(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "quiet.sock")

	listener, err := Listen(sockPath)
	require.NoError(t, err)
	defer listener.Close() //nolint:errcheck // test cleanup

	start := time.Now()
	_, err = listener.Recv(100 * time.Millisecond)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClose_RemovesSocketFile(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "removed.sock")

	listener, err := Listen(sockPath)
	require.NoError(t, err)
	require.NoError(t, listener.Close())

	_, err = os.Stat(sockPath)
	assert.True(t, os.IsNotExist(err))
}
