// Package diag inspects whether this system can observe an induced crash in
// a useful way (core dumps enabled, credential passing available, which pid
// namespace we are watching from).
package diag

import (
	"os"
	"runtime"
)

// Info is the capability report backing "crashmon doctor".
type Info struct {
	OS              string
	Arch            string
	GoVersion       string
	RunningAsRoot   bool
	CorePattern     string
	CoreLimitSoft   uint64
	CoreLimitHard   uint64
	PidNamespace    string
	PeerCredSupport bool
	Warnings        []string
	Recommendations []string
}

// Collect gathers the capability report for the current system.
func Collect() Info {
	info := Info{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}

	info.RunningAsRoot = os.Geteuid() == 0

	collectPlatform(&info)

	if info.OS != "linux" {
		return info
	}

	if info.CoreLimitSoft == 0 {
		info.Warnings = append(info.Warnings,
			"RLIMIT_CORE soft limit is 0 - the kernel will not write core dumps",
		)
		info.Recommendations = append(info.Recommendations,
			"Raise the core limit (ulimit -c unlimited) before launching fixtures",
		)
	}

	if !info.PeerCredSupport {
		info.Warnings = append(info.Warnings,
			"Unix datagram credential passing unavailable - pid handoff cannot be observed",
		)
	}

	return info
}
