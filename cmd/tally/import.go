package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallylabs/tally/pkg/tally/logging"
	"github.com/tallylabs/tally/pkg/tally/manifest"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a manifest written in a legacy text encoding",
	Long: `Import reads a historical manifest written in a legacy encoding and
rewrites it to the canonical form at the configured manifest path. This is
a one-shot conversion; scan and find-dups only ever read canonical
manifests.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringP("encoding", "e", "cp437",
		fmt.Sprintf("source text encoding (%v)", manifest.LegacyEncodings()))

	rootCmd.AddCommand(importCmd)
}

// runImport is the import command handler.
func runImport(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger := logging.Get("import")

	source := args[0]
	encoding, _ := cmd.Flags().GetString("encoding")

	m, err := manifest.LoadLegacy(source, encoding)
	if err != nil {
		return fmt.Errorf("importing %s: %w", source, err)
	}

	mPath := manifestPath()
	if err := os.MkdirAll(filepath.Dir(mPath), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := manifest.Save(m, mPath); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	logger.Info("manifest imported", "source", source,
		"encoding", encoding, "entries", m.Len(), "dest", mPath)
	printInfo("Imported %d entries from %s (%s) to %s", m.Len(), source, encoding, mPath)
	return nil
}
