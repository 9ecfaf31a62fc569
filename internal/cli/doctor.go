package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/crashkit/crashkit/internal/diag"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	doctorCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runDoctor()
	}
}

func runDoctor() error {
	info := diag.Collect()

	if jsonOutput {
		return outputDoctorJSON(&info)
	}
	return outputDoctorText(&info)
}

func outputDoctorText(info *diag.Info) error {
	// Banner only when a human is watching
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("Crashmon Diagnostics\n")
		fmt.Printf("====================\n\n")
	}

	// System Information
	fmt.Printf("System Information:\n")
	fmt.Printf("  OS:          %s\n", info.OS)
	fmt.Printf("  Arch:        %s\n", info.Arch)
	fmt.Printf("  Go Version:  %s\n", info.GoVersion)
	if info.RunningAsRoot {
		fmt.Printf("  Running as:  root\n")
	} else {
		fmt.Printf("  Running as:  non-root user\n")
	}
	fmt.Println()

	// Crash observation capabilities
	fmt.Printf("Crash Observation:\n")
	if info.CorePattern != "" {
		fmt.Printf("  Core pattern:   %s\n", info.CorePattern)
	}
	fmt.Printf("  Core limit:     soft=%d hard=%d\n", info.CoreLimitSoft, info.CoreLimitHard)
	if info.PidNamespace != "" {
		fmt.Printf("  PID namespace:  %s\n", info.PidNamespace)
	}
	printCapability("Credential Passing", info.PeerCredSupport)
	fmt.Println()

	// Warnings
	if len(info.Warnings) > 0 {
		fmt.Printf("Warnings:\n")
		for _, w := range info.Warnings {
			fmt.Printf("  [!] %s\n", w)
		}
		fmt.Println()
	}

	// Recommendations
	if len(info.Recommendations) > 0 {
		fmt.Printf("Recommendations:\n")
		for _, r := range info.Recommendations {
			fmt.Printf("  [*] %s\n", r)
		}
		fmt.Println()
	}

	return nil
}

func printCapability(name string, enabled bool) {
	status := "unavailable"
	if enabled {
		status = "available"
	}
	fmt.Printf("  %-18s %s\n", name+":", status)
}

func outputDoctorJSON(info *diag.Info) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}
