// crasher is a deliberate crash fixture for crash-reporting harnesses. It
// prints its pid, optionally hands the pid off to a peer over a Unix datagram
// socket, and then overflows its own stack.
//
// Usage:
//
//	crasher                   crash
//	crasher --nocrash         exit 0 without crashing
//	crasher --sendpid <path>  send one datagram to <path>, then crash;
//	                          exit 0 if the handoff fails
//
// The argument shapes are matched exactly; anything else crashes.
package main

import (
	"os"

	"github.com/crashkit/crashkit/internal/crasher"
)

func main() {
	if !crasher.Prepare(os.Args, os.Stderr) {
		os.Exit(0)
	}
	os.Exit(crasher.Detonate()) // never returns
}
