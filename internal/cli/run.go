package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/crashkit/crashkit/internal/peercred"
	"github.com/crashkit/crashkit/internal/report"
	"github.com/crashkit/crashkit/internal/runner"
	"github.com/spf13/cobra"
)

// runCmdFlags holds flags for the run command
type runCmdFlags struct {
	timeout  string
	sendPid  bool
	noReport bool
}

var runFlags runCmdFlags

func init() {
	runCmd.RunE = runFixture
	runCmd.Flags().StringVar(&runFlags.timeout, "timeout", "", "Run timeout (e.g., 30s, 2m)")
	runCmd.Flags().BoolVar(&runFlags.sendPid, "sendpid", false, "Set up a handoff socket and pass it to the fixture")
	runCmd.Flags().BoolVar(&runFlags.noReport, "no-report", false, "Skip writing a report entry")
}

// runFixture launches the crasher fixture and classifies its termination
func runFixture(cmd *cobra.Command, args []string) error {
	logger := createLogger(cfg.LogLevel)

	timeout := cfg.Timeout
	if runFlags.timeout != "" {
		parsed, err := time.ParseDuration(runFlags.timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", runFlags.timeout, err)
		}
		timeout = parsed
	}

	// Create report logger
	var reportLogger *report.Logger
	if cfg.ReportEnabled && !runFlags.noReport {
		var err error
		reportLogger, err = report.NewLogger(cfg.ReportFile)
		if err != nil {
			logger.Warn("failed to initialize report logger", slog.String("error", err.Error()))
			// Continue without report logging
		}
	}
	defer func() {
		if reportLogger != nil {
			_ = reportLogger.Close() //nolint:errcheck // cleanup
		}
	}()

	r, err := runner.New(cfg.CrasherPath, timeout)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}
	r.SetLogger(logger)

	fixtureArgs := args

	// Set up the handoff listener before launching so the fixture finds a
	// live socket on its single connect attempt.
	var listener *peercred.Listener
	if runFlags.sendPid {
		sockPath := filepath.Join(cfg.SocketDir, fmt.Sprintf("crashmon-%d.sock", os.Getpid()))
		listener, err = peercred.Listen(sockPath)
		if err != nil {
			if reportLogger != nil {
				_ = reportLogger.LogError(cfg.CrasherPath, err.Error()) //nolint:errcheck // report logging
			}
			return fmt.Errorf("failed to set up handoff socket: %w", err)
		}
		defer func() {
			_ = listener.Close() //nolint:errcheck // cleanup
		}()
		listener.SetLogger(logger)
		fixtureArgs = append([]string{"--sendpid", sockPath}, args...)

		logger.Info("handoff socket ready", slog.String("path", sockPath))
	}

	logger.Info("launching fixture",
		slog.String("binary", cfg.CrasherPath),
		slog.Duration("timeout", timeout),
	)

	type runResult struct {
		outcome *runner.Outcome
		err     error
	}
	done := make(chan runResult, 1)
	go func() {
		outcome, runErr := r.Run(context.Background(), fixtureArgs...)
		done <- runResult{outcome, runErr}
	}()

	// Receive the handoff while the fixture runs; it crashes right after
	// sending, so waiting for process exit first would not lose the datagram
	// (datagrams are queued), but reading here keeps the timeline honest.
	var namespacePid int32
	if listener != nil {
		msg, recvErr := listener.Recv(timeout)
		if recvErr != nil {
			logger.Warn("no pid handoff received", slog.String("error", recvErr.Error()))
		} else {
			namespacePid = msg.Pid
			logger.Info("pid handoff received",
				slog.Int("namespace_pid", int(msg.Pid)),
				slog.Int("payload_bytes", len(msg.Payload)),
			)
		}
	}

	res := <-done
	if res.err != nil {
		if reportLogger != nil {
			_ = reportLogger.LogError(cfg.CrasherPath, res.err.Error()) //nolint:errcheck // report logging
		}
		return fmt.Errorf("failed to run fixture: %w", res.err)
	}

	outcome := res.outcome
	result := classifyOutcome(outcome)

	if reportLogger != nil {
		_ = reportLogger.LogEnd(cfg.CrasherPath, outcome.Pid, namespacePid, //nolint:errcheck // report logging
			outcome.ExitCode, outcome.Signal, outcome.CoreDumped, outcome.Duration, result)
	}

	fmt.Printf("Fixture Run\n")
	fmt.Printf("===========\n")
	fmt.Printf("  Binary:     %s\n", cfg.CrasherPath)
	fmt.Printf("  PID:        %d\n", outcome.Pid)
	if namespacePid != 0 {
		fmt.Printf("  Handoff:    pid %d (as seen from this namespace)\n", namespacePid)
	}
	fmt.Printf("  Outcome:    %s\n", result)
	if outcome.Signaled {
		fmt.Printf("  Signal:     %s\n", outcome.Signal)
		fmt.Printf("  Core:       %v\n", outcome.CoreDumped)
	} else if !outcome.TimedOut {
		fmt.Printf("  Exit code:  %d\n", outcome.ExitCode)
	}
	fmt.Printf("  Duration:   %s\n", outcome.Duration.Round(time.Millisecond))

	return nil
}

func classifyOutcome(o *runner.Outcome) string {
	switch {
	case o.TimedOut:
		return "timeout"
	case o.Crashed():
		return "crashed"
	default:
		return "exited"
	}
}
