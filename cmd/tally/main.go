// Package main provides the entry point for the tally file inventory CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tallylabs/tally/pkg/tally/manifest"
)

// Exit codes. Scripts depend on these staying distinguishable.
const (
	exitOK          = 0
	exitFailure     = 1
	exitManifest    = 2
	exitInterrupted = 3
)

// errManifestNotFound marks a missing manifest where one was required.
var errManifestNotFound = errors.New("manifest not found")

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitInterrupted
	case errors.Is(err, errManifestNotFound),
		errors.Is(err, manifest.ErrCorrupt),
		errors.Is(err, manifest.ErrUnsupportedVersion):
		return exitManifest
	default:
		return exitFailure
	}
}
