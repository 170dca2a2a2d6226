// Package config provides configuration management for the tally file
// inventory tool.
package config

// Default configuration values for tally.
const (
	// DefaultManifestName is the file name of the default manifest.
	DefaultManifestName = "manifest.tly"

	// DefaultWorkers is the default number of hash workers. Zero selects
	// min(GOMAXPROCS, 8) at scan time.
	DefaultWorkers = 0

	// DefaultChunkSize is the default hasher read size in bytes.
	DefaultChunkSize = 64 * 1024

	// DefaultFormat is the output format used when none is specified.
	DefaultFormat = "pretty"

	// DefaultGroupLimit is the maximum number of duplicate groups shown
	// by default. Zero means unlimited.
	DefaultGroupLimit = 0
)

// DefaultExclusions contains paths that should be excluded from scanning
// by default.
var DefaultExclusions = []string{
	"/proc",
	"/sys",
	"/dev",
}
