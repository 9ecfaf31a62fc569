package main

import (
	"os"

	"github.com/crashkit/crashkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
