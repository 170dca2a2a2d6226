package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallylabs/tally/pkg/tally/config"
	"github.com/tallylabs/tally/pkg/tally/logging"
	"github.com/tallylabs/tally/pkg/tally/manifest"
	"github.com/tallylabs/tally/pkg/tally/scanner"
	"github.com/tallylabs/tally/pkg/tally/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Reconcile the manifest against the file system",
	Long: `Scan walks the given directories (default: current directory), re-hashes
files that are new or changed, carries hashes forward for unchanged files,
drops entries for files that no longer exist, and saves the manifest.

Interrupting a scan saves the entries reconciled so far.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntP("workers", "w", 0, "hash worker count (0=auto)")
	scanCmd.Flags().Int("chunk-size", 0, "hasher read size in bytes (0=default)")
	scanCmd.Flags().BoolP("follow-symlinks", "L", false, "follow directory symlinks")
	scanCmd.Flags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")

	_ = viper.BindPFlag("scan.workers", scanCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("scan.chunk_size", scanCmd.Flags().Lookup("chunk-size"))
	_ = viper.BindPFlag("scan.follow_symlinks", scanCmd.Flags().Lookup("follow-symlinks"))
	_ = viper.BindPFlag("scan.exclude", scanCmd.Flags().Lookup("exclude"))

	rootCmd.AddCommand(scanCmd)
}

// runScan is the scan command handler.
func runScan(_ *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger := logging.Get("scan")

	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	mPath := manifestPath()
	if err := os.MkdirAll(filepath.Dir(mPath), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	// A missing manifest means a first run; corruption is fatal rather
	// than silently starting over.
	prior, err := manifest.Load(mPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading manifest %s: %w", mPath, err)
		}
		logger.Info("no manifest found, starting empty", "path", mPath)
		prior = nil
	}

	runID := uuid.NewString()
	logger.Info("scan started", "run", runID, "roots", roots, "manifest", mPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var printer *progressPrinter
	opts := scanner.Options{
		Roots:          roots,
		Workers:        cfg.Scan.Workers,
		ChunkSize:      cfg.Scan.ChunkSize,
		FollowSymlinks: cfg.Scan.FollowSymlinks,
		Exclude:        cfg.Scan.Exclude,
		OnWarning: func(path string, warnErr error) {
			logger.Warn("skipped", "path", path, "error", warnErr)
		},
	}
	if !getQuiet() {
		printer = newProgressPrinter(os.Stderr)
		opts.OnFile = printer.onFile
	}

	s := scanner.New(opts)
	next, stats, scanErr := s.Reconcile(ctx, prior)
	if printer != nil {
		printer.done()
	}

	interrupted := scanErr != nil && errors.Is(scanErr, context.Canceled)
	if scanErr != nil && !interrupted {
		logger.Error("scan failed", "run", runID, "error", scanErr)
		return scanErr
	}

	// Persist what was reconciled, even on interruption.
	if next != nil {
		if saveErr := manifest.Save(next, mPath); saveErr != nil {
			logger.Error("manifest save failed", "run", runID, "error", saveErr)
			return fmt.Errorf("saving manifest: %w", saveErr)
		}
	}

	logger.Info("scan finished", "run", runID,
		"seen", stats.FilesSeen, "hashed", stats.FilesHashed,
		"reused", stats.FilesReused, "unreadable", stats.FilesUnreadable,
		"bytes", stats.BytesHashed, "elapsed", stats.Elapsed,
		"interrupted", interrupted)

	if interrupted {
		printInfo("Interrupted: saved %d entries reconciled before the signal", next.Len())
		return scanErr
	}

	printInfo("Scanned %d files in %s: %d hashed (%s read), %d reused, %d unreadable",
		stats.FilesSeen, stats.Elapsed.Round(time.Millisecond),
		stats.FilesHashed, types.FormatSize(stats.BytesHashed),
		stats.FilesReused, stats.FilesUnreadable)
	return nil
}

// resolveRoots expands and absolutizes the scan roots.
func resolveRoots(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	roots := make([]string, 0, len(args))
	for _, arg := range args {
		expanded, err := config.ExpandPath(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to expand path: %w", err)
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path: %w", err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}
