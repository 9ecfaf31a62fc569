//go:build e2e

package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/crashkit/crashkit/internal/peercred"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var crasherBinary string

// TestMain builds the fixture once for the whole suite
func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "crashkit-e2e")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	crasherBinary = filepath.Join(tmpDir, "crasher")
	cmd := exec.Command("go", "build", "-o", crasherBinary, "github.com/crashkit/crashkit/cmd/crasher")
	cmd.Dir = "../.."
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Printf("Failed to build crasher: %v\n%s\n", err, output)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// runCrasher runs the fixture and reports stderr, the exit code, and the
// signal it died of (empty when it exited normally)
func runCrasher(t *testing.T, args ...string) (stderr string, exitCode int, signal string) {
	t.Helper()

	cmd := exec.Command(crasherBinary, args...)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	err := cmd.Run()
	stderr = errBuf.String()

	if err == nil {
		return stderr, 0, ""
	}

	exitErr, ok := err.(*exec.ExitError)
	require.True(t, ok, "unexpected run error: %v", err)
	exitCode = exitErr.ExitCode()
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		signal = ws.Signal().String()
	}
	return stderr, exitCode, signal
}

var pidLine = regexp.MustCompile(`(?m)^pid=(\d+)$`)

func TestE2E_NoCrash(t *testing.T) {
	stderr, exitCode, signal := runCrasher(t, "--nocrash")

	assert.Equal(t, 0, exitCode)
	assert.Empty(t, signal)
	assert.Regexp(t, pidLine, stderr)
	assert.Contains(t, stderr, "Doing normal exit")
	assert.NotContains(t, stderr, "Crashing as requested.")
}

func TestE2E_DefaultCrashes(t *testing.T) {
	stderr, exitCode, signal := runCrasher(t)

	assert.NotEqual(t, 0, exitCode, "crash mode must not exit normally")
	assert.NotEmpty(t, signal, "crash mode must die of a signal")
	assert.Regexp(t, pidLine, stderr)
	assert.Contains(t, stderr, "Crashing as requested.")
}

func TestE2E_SendPidDeadSocketExitsZero(t *testing.T) {
	deadSock := filepath.Join(t.TempDir(), "dead.sock")
	stderr, exitCode, signal := runCrasher(t, "--sendpid", deadSock)

	assert.Equal(t, 0, exitCode)
	assert.Empty(t, signal)
	assert.Contains(t, stderr, "connect() failed:")
	assert.NotContains(t, stderr, "Crashing as requested.")
}

func TestE2E_SendPidHandoffThenCrash(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("credential-passing listener requires linux")
	}

	sockPath := filepath.Join(t.TempDir(), "handoff.sock")
	listener, err := peercred.Listen(sockPath)
	require.NoError(t, err)
	defer listener.Close() //nolint:errcheck // test cleanup

	stderr, exitCode, signal := runCrasher(t, "--sendpid", sockPath)

	assert.NotEqual(t, 0, exitCode, "successful handoff must proceed to the crash")
	assert.NotEmpty(t, signal)
	assert.Contains(t, stderr, "Crashing as requested.")

	msg, err := listener.Recv(5 * time.Second)
	require.NoError(t, err)
	require.Len(t, msg.Payload, 1)
	assert.Equal(t, byte(0), msg.Payload[0])

	// The announced pid and the credential-reported pid agree when the
	// fixture runs in our own pid namespace.
	match := pidLine.FindStringSubmatch(stderr)
	require.NotNil(t, match, "stderr missing pid line: %q", stderr)
	announced, err := strconv.Atoi(match[1])
	require.NoError(t, err)
	assert.Equal(t, int32(announced), msg.Pid)
}

func TestE2E_UnknownArgumentsCrash(t *testing.T) {
	_, exitCode, signal := runCrasher(t, "--nocrash", "extra")

	assert.NotEqual(t, 0, exitCode)
	assert.NotEmpty(t, signal)
}
