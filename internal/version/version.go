// Package version holds build metadata, overridden at link time with -ldflags "-X".
package version

import "runtime"

var (
	Version   = "dev"             // ex: v1.2.0
	Commit    = "none"            // ex: 3f9c2ab
	BuildDate = "unknown"         // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version() // toolchain that built the binary
)
