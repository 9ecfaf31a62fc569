//go:build !linux

package diag

func collectPlatform(info *Info) {
	info.Warnings = append(info.Warnings,
		"pid-namespace and core-pattern diagnostics are only available on Linux",
	)
}
