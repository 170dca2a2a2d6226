package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	// Use a temp directory that doesn't have a config file
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !strings.HasSuffix(cfg.ManifestPath, DefaultManifestName) {
		t.Errorf("ManifestPath = %q, want suffix %q", cfg.ManifestPath, DefaultManifestName)
	}

	if cfg.Scan.Workers != DefaultWorkers {
		t.Errorf("Scan.Workers = %d, want %d", cfg.Scan.Workers, DefaultWorkers)
	}

	if cfg.Scan.ChunkSize != DefaultChunkSize {
		t.Errorf("Scan.ChunkSize = %d, want %d", cfg.Scan.ChunkSize, DefaultChunkSize)
	}

	if cfg.Scan.FollowSymlinks {
		t.Error("Scan.FollowSymlinks = true, want false")
	}

	if len(cfg.Scan.Exclude) != len(DefaultExclusions) {
		t.Errorf("len(Scan.Exclude) = %d, want %d", len(cfg.Scan.Exclude), len(DefaultExclusions))
	}

	if cfg.Report.Format != DefaultFormat {
		t.Errorf("Report.Format = %q, want %q", cfg.Report.Format, DefaultFormat)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if cfg.Report.Limit != DefaultGroupLimit {
		t.Errorf("Report.Limit = %d, want %d", cfg.Report.Limit, DefaultGroupLimit)
	}

	if cfg.Logging.Rotation.MaxSizeMB != 10 {
		t.Errorf("Rotation.MaxSizeMB = %d, want 10", cfg.Logging.Rotation.MaxSizeMB)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "tally")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
manifest_path: /custom/manifest.tly
scan:
  workers: 4
  chunk_size: 131072
  follow_symlinks: true
  exclude:
    - /tmp
report:
  format: json
  min_size: 1MB
  limit: 25
logging:
  level: debug
  components:
    scanner: debug
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ManifestPath != "/custom/manifest.tly" {
		t.Errorf("ManifestPath = %q", cfg.ManifestPath)
	}
	if cfg.Scan.Workers != 4 {
		t.Errorf("Scan.Workers = %d, want 4", cfg.Scan.Workers)
	}
	if cfg.Scan.ChunkSize != 131072 {
		t.Errorf("Scan.ChunkSize = %d, want 131072", cfg.Scan.ChunkSize)
	}
	if !cfg.Scan.FollowSymlinks {
		t.Error("Scan.FollowSymlinks = false, want true")
	}
	if len(cfg.Scan.Exclude) != 1 || cfg.Scan.Exclude[0] != "/tmp" {
		t.Errorf("Scan.Exclude = %v", cfg.Scan.Exclude)
	}
	if cfg.Report.Format != "json" {
		t.Errorf("Report.Format = %q, want json", cfg.Report.Format)
	}
	if cfg.Report.Limit != 25 {
		t.Errorf("Report.Limit = %d, want 25", cfg.Report.Limit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Logging.Components["scanner"] != "debug" {
		t.Errorf("Components[scanner] = %q, want debug", cfg.Logging.Components["scanner"])
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("TALLY_MANIFEST_PATH", "/env/manifest.tly")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ManifestPath != "/env/manifest.tly" {
		t.Errorf("ManifestPath = %q, want env override", cfg.ManifestPath)
	}
}

func TestLoad_TildeExpansion(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "tally")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"),
		[]byte("manifest_path: ~/inventory.tly\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := filepath.Join(tempDir, "inventory.tly")
	if cfg.ManifestPath != want {
		t.Errorf("ManifestPath = %q, want %q", cfg.ManifestPath, want)
	}
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "tally")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"),
		[]byte("manifest_path: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	if _, err := Load(viper.New(), ""); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := Load(viper.New(), missing); err == nil {
		t.Error("Load() should fail when an explicit config file is missing")
	}
}

func TestLoad_MergesPresetValues(t *testing.T) {
	// The CLI binds flags onto a shared viper instance before loading;
	// values already set there must win over defaults.
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	v := viper.New()
	v.Set("scan.workers", 3)
	v.Set("report.format", "json")

	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scan.Workers != 3 {
		t.Errorf("Scan.Workers = %d, want preset 3", cfg.Scan.Workers)
	}
	if cfg.Report.Format != "json" {
		t.Errorf("Report.Format = %q, want preset json", cfg.Report.Format)
	}
	if cfg.Scan.ChunkSize != DefaultChunkSize {
		t.Errorf("Scan.ChunkSize = %d, want default %d", cfg.Scan.ChunkSize, DefaultChunkSize)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandPath("~/x/y")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath = %q", got)
	}

	got, err = ExpandPath("/abs/path")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
}
