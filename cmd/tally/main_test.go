package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/tallylabs/tally/pkg/tally/manifest"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "cancellation maps to interrupted",
			err:  fmt.Errorf("scan interrupted: %w", context.Canceled),
			want: exitInterrupted,
		},
		{
			name: "missing manifest maps to manifest status",
			err:  fmt.Errorf("%w: /x/manifest.tly", errManifestNotFound),
			want: exitManifest,
		},
		{
			name: "corrupt manifest maps to manifest status",
			err:  fmt.Errorf("loading: %w", manifest.ErrCorrupt),
			want: exitManifest,
		},
		{
			name: "unsupported version maps to manifest status",
			err:  fmt.Errorf("loading: %w", manifest.ErrUnsupportedVersion),
			want: exitManifest,
		},
		{
			name: "everything else is a generic failure",
			err:  errors.New("disk full"),
			want: exitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadConfigAppliesFullDefaultSet(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	if err := loadConfig(nil, nil); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg == nil {
		t.Fatal("config not populated")
	}
	if manifestPath() == "" {
		t.Error("manifest path default missing")
	}
	// Defaults only the config package knows about must reach the CLI.
	if cfg.Logging.Rotation.MaxSizeMB != 10 {
		t.Errorf("Rotation.MaxSizeMB = %d, want 10", cfg.Logging.Rotation.MaxSizeMB)
	}
	if cfg.Report.Format == "" {
		t.Error("report format default missing")
	}
}

func TestResolveRoots(t *testing.T) {
	roots, err := resolveRoots(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 {
		t.Fatalf("roots = %v, want one default root", roots)
	}
	if !filepath.IsAbs(roots[0]) {
		t.Errorf("default root %q is not absolute", roots[0])
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if roots[0] != wd {
		t.Errorf("default root = %q, want working directory %q", roots[0], wd)
	}

	roots, err = resolveRoots([]string{"a/b", "/abs"})
	if err != nil {
		t.Fatal(err)
	}
	if roots[0] != filepath.Join(wd, "a", "b") {
		t.Errorf("relative root = %q", roots[0])
	}
	if roots[1] != "/abs" {
		t.Errorf("absolute root changed: %q", roots[1])
	}
}
