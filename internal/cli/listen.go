package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/crashkit/crashkit/internal/peercred"
	"github.com/spf13/cobra"
)

// listenCmdFlags holds flags for the listen command
type listenCmdFlags struct {
	timeout string
}

var listenFlags listenCmdFlags

func init() {
	listenCmd.RunE = runListen
	listenCmd.Flags().StringVar(&listenFlags.timeout, "timeout", "", "How long to wait for a datagram (e.g., 30s); 0 waits forever")
}

// runListen receives one pid handoff datagram and prints the sender pid
func runListen(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one argument")
	}
	sockPath := args[0]

	logger := createLogger(cfg.LogLevel)

	timeout := cfg.Timeout
	if listenFlags.timeout != "" {
		parsed, err := time.ParseDuration(listenFlags.timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", listenFlags.timeout, err)
		}
		timeout = parsed
	}

	listener, err := peercred.Listen(sockPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", sockPath, err)
	}
	defer func() {
		_ = listener.Close() //nolint:errcheck // cleanup
	}()

	logger.Info("waiting for handoff datagram",
		slog.String("socket", sockPath),
		slog.Duration("timeout", timeout),
	)

	msg, err := listener.Recv(timeout)
	if err != nil {
		return fmt.Errorf("failed to receive handoff: %w", err)
	}

	if len(msg.Payload) != peercred.DefaultPayloadSize {
		logger.Warn("unexpected handoff payload length", slog.Int("bytes", len(msg.Payload)))
	}

	if jsonOutput {
		out := map[string]interface{}{
			"pid":           msg.Pid,
			"uid":           msg.Uid,
			"gid":           msg.Gid,
			"payload_bytes": len(msg.Payload),
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	fmt.Printf("pid=%d uid=%d gid=%d payload=%d byte(s)\n", msg.Pid, msg.Uid, msg.Gid, len(msg.Payload))
	return nil
}
