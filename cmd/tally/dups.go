package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallylabs/tally/pkg/tally/dupes"
	"github.com/tallylabs/tally/pkg/tally/filter"
	"github.com/tallylabs/tally/pkg/tally/logging"
	"github.com/tallylabs/tally/pkg/tally/manifest"
	"github.com/tallylabs/tally/pkg/tally/output"
	"github.com/tallylabs/tally/pkg/tally/types"
)

var dupsCmd = &cobra.Command{
	Use:   "find-dups",
	Short: "Report duplicate content from the manifest",
	Long: `Find-dups groups manifest entries by content hash and reports groups with
more than one member, largest first. It never reads file content; run
"tally scan" first to bring the manifest up to date.`,
	RunE: runDups,
}

func init() {
	dupsCmd.Flags().StringP("output", "o", "", "output format (pretty, plain, json, jsonl, yaml, table)")
	dupsCmd.Flags().StringP("min-size", "s", "", "minimum per-file size (e.g., 100M, 1G)")
	dupsCmd.Flags().IntP("limit", "l", 0, "maximum number of groups (0=unlimited)")
	dupsCmd.Flags().StringSlice("include", nil, "only report members matching these glob patterns")
	dupsCmd.Flags().StringSlice("exclude", nil, "drop members matching these glob patterns")
	dupsCmd.Flags().StringSlice("ext", nil, "only report members with these extensions")
	dupsCmd.Flags().String("report", "", "write the formatted report to a file")

	_ = viper.BindPFlag("report.format", dupsCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("report.min_size", dupsCmd.Flags().Lookup("min-size"))
	_ = viper.BindPFlag("report.limit", dupsCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("report.include", dupsCmd.Flags().Lookup("include"))
	_ = viper.BindPFlag("report.exclude", dupsCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("report.extensions", dupsCmd.Flags().Lookup("ext"))

	rootCmd.AddCommand(dupsCmd)
}

// runDups is the find-dups command handler.
func runDups(cmd *cobra.Command, _ []string) error {
	if err := initLogging(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger := logging.Get("dups")

	mPath := manifestPath()
	m, err := manifest.Load(mPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s (run \"tally scan\" first)", errManifestNotFound, mPath)
		}
		return fmt.Errorf("loading manifest %s: %w", mPath, err)
	}

	f, err := buildReportFilter()
	if err != nil {
		return err
	}

	idx := dupes.Build(m)
	groups := f.Apply(idx.Groups())
	logger.Info("duplicates indexed", "entries", m.Len(),
		"groups", len(idx.Groups()), "reported", len(groups))

	report := output.BuildReport(mPath, groups, idx.Summary())
	report.Truncated = f.Limit > 0 && len(idx.Groups()) > len(groups)

	format := cfg.Report.Format
	if format == "" {
		format = "pretty"
	}
	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v",
			format, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := os.WriteFile(reportPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		printInfo("Report written to %s (%d groups)", reportPath, len(groups))
		return nil
	}

	fmt.Print(buf.String())
	return nil
}

// buildReportFilter creates a filter.Filter from the report settings.
func buildReportFilter() (*filter.Filter, error) {
	var opts []filter.Option

	if cfg.Report.MinSize != "" {
		minSize, err := types.ParseSize(cfg.Report.MinSize)
		if err != nil {
			return nil, fmt.Errorf("invalid min-size %q: %w", cfg.Report.MinSize, err)
		}
		opts = append(opts, filter.WithMinSize(minSize))
	}
	if cfg.Report.Limit > 0 {
		opts = append(opts, filter.WithLimit(cfg.Report.Limit))
	}
	if len(cfg.Report.Include) > 0 {
		opts = append(opts, filter.WithInclude(cfg.Report.Include...))
	}
	if len(cfg.Report.Exclude) > 0 {
		opts = append(opts, filter.WithExclude(cfg.Report.Exclude...))
	}
	if len(cfg.Report.Extensions) > 0 {
		opts = append(opts, filter.WithExtensions(cfg.Report.Extensions...))
	}

	return filter.New(opts...), nil
}
