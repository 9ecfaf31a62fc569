package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/crashkit/crashkit/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// Global flags
	crasherPath string
	socketDir   string
	verbose     bool
	jsonOutput  bool

	// Global config
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crashmon",
	Short: "Crashmon - Launcher and observer for crash fixtures",
	Long: `crashmon is a CLI tool for exercising deliberate crash fixtures.
It launches the crasher test binary, observes how it terminates, and can
receive the fixture's pid handoff across pid-namespace boundaries.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if crasherPath != "" {
			cfg.CrasherPath = crasherPath
		}
		if socketDir != "" {
			cfg.SocketDir = socketDir
		}
		if verbose {
			cfg.LogLevel = "debug"
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&crasherPath, "crasher", "", "Path to the crasher fixture binary (overrides config)")
	rootCmd.PersistentFlags().StringVar(&socketDir, "socket-dir", "", "Directory for handoff sockets (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	// Version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("crashmon version %s\ncommit: %s\nbuilt: %s\n", Version, GitCommit, BuildDate))

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(doctorCmd)
}

// runCmd launches the crash fixture and reports how it died
var runCmd = &cobra.Command{
	Use:   "run [-- fixture-args...]",
	Short: "Launch the crash fixture and classify its termination",
	Long: `Launch the crasher fixture, wait for it to terminate, and report
whether it exited cleanly or died of a signal.
Example: crashmon run --sendpid`,
}

// listenCmd waits for one pid handoff datagram
var listenCmd = &cobra.Command{
	Use:   "listen <socket-path>",
	Short: "Receive one pid handoff datagram",
	Long: `Create a Unix datagram socket, wait for the fixture's handoff
datagram, and print the sender pid as observed from this pid namespace.
Example: crashmon listen /tmp/crasher.sock`,
	Args: cobra.ExactArgs(1),
}

// doctorCmd diagnoses crash-observation capabilities
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose crash-observation capabilities",
	Long:  `Diagnose whether this system can observe induced crashes (core dumps, credential passing, pid namespace).`,
}

// createLogger creates a structured logger with the specified level
func createLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}
