package godeck

import "fmt"

// Version information for the godeck library.
const (
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

// Version is the full version string of the godeck library.
var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
