// Package crasher implements the crash fixture: a process that announces its
// pid, optionally hands it off to a peer over a Unix datagram socket, and then
// deliberately dies of stack exhaustion. The argv contract is positional and
// exact because external harnesses pattern-match on it.
package crasher

import (
	"fmt"
	"io"
	"os"
)

// Mode is the result of argument dispatch.
type Mode int

const (
	// ModeCrash runs the recursive bomb. This is the default for any
	// argument shape not matched below.
	ModeCrash Mode = iota

	// ModeNoCrash exits cleanly without ever reaching the bomb.
	ModeNoCrash

	// ModeSendPid performs the pid handoff first, then crashes if the
	// handoff succeeded.
	ModeSendPid
)

// SelectMode picks one of the three modes from the raw argument list
// (including the program name at args[0]). The match is exact: extra or
// missing arguments fall through to ModeCrash.
func SelectMode(args []string) (Mode, string) {
	if len(args) == 2 && args[1] == "--nocrash" {
		return ModeNoCrash, ""
	}
	if len(args) == 3 && args[1] == "--sendpid" {
		return ModeSendPid, args[2]
	}
	return ModeCrash, ""
}

// Prepare announces the pid, dispatches on the argument mode, and reports
// whether the caller should proceed to the crash path. A handoff failure is
// not an error: the harness is presumed unable to observe the crash, so the
// fixture has nothing left to do and the caller should exit 0.
func Prepare(args []string, diag io.Writer) bool {
	fmt.Fprintf(diag, "pid=%d\n", os.Getpid())

	mode, path := SelectMode(args)
	switch mode {
	case ModeNoCrash:
		fmt.Fprintln(diag, "Doing normal exit")
		return false
	case ModeSendPid:
		if !SendPid(path, diag) {
			return false
		}
	}

	fmt.Fprintln(diag, "Crashing as requested.")
	return true
}
