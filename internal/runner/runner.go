// Package runner launches the crash fixture and classifies how it died.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Outcome describes one terminated fixture run.
type Outcome struct {
	Pid        int
	ExitCode   int
	Signaled   bool
	Signal     string
	CoreDumped bool
	TimedOut   bool
	Duration   time.Duration
}

// Crashed reports whether the process was killed by a signal rather than
// exiting on its own.
func (o *Outcome) Crashed() bool {
	return o.Signaled
}

// Runner executes a fixture binary and waits for it to terminate.
type Runner struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a runner for the given fixture binary.
func New(binary string, timeout time.Duration) (*Runner, error) {
	if binary == "" {
		return nil, fmt.Errorf("fixture binary cannot be empty")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}

	return &Runner{
		binary:  binary,
		timeout: timeout,
		logger:  slog.Default(),
	}, nil
}

// SetLogger sets the logger
func (r *Runner) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Run starts the fixture with the given arguments and blocks until it
// terminates or the timeout elapses. A signal death is a normal outcome here,
// not an error: the returned Outcome says how the process ended, and the
// error is reserved for failures to run it at all.
func (r *Runner) Run(ctx context.Context, args ...string) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stderr = os.Stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", r.binary, err)
	}

	r.logger.Debug("fixture started",
		slog.String("binary", r.binary),
		slog.Int("pid", cmd.Process.Pid),
	)

	err := cmd.Wait()
	outcome := &Outcome{
		Pid:      cmd.Process.Pid,
		Duration: time.Since(start),
	}

	if ctx.Err() == context.DeadlineExceeded {
		outcome.TimedOut = true
		r.logger.Warn("fixture timed out", slog.Duration("timeout", r.timeout))
		return outcome, nil
	}

	if err == nil {
		outcome.ExitCode = 0
		r.logger.Info("fixture exited cleanly", slog.Int("pid", outcome.Pid))
		return outcome, nil
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return nil, fmt.Errorf("failed to wait for %s: %w", r.binary, err)
	}

	outcome.ExitCode = exitErr.ExitCode()
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		outcome.Signaled = true
		outcome.Signal = ws.Signal().String()
		outcome.CoreDumped = ws.CoreDump()
	}

	r.logger.Info("fixture terminated",
		slog.Int("pid", outcome.Pid),
		slog.Int("exit_code", outcome.ExitCode),
		slog.Bool("signaled", outcome.Signaled),
		slog.String("signal", outcome.Signal),
		slog.Bool("core_dumped", outcome.CoreDumped),
	)

	return outcome, nil
}
