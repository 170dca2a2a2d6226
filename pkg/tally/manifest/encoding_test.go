package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLegacyCP437(t *testing.T) {
	// 0x81 is u-umlaut in code page 437.
	content := append([]byte("version 2\n"+
		"aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d 10 /data/m"), 0x81, 'l', 'l', '\n')

	path := filepath.Join(t.TempDir(), "legacy")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadLegacy(path, "cp437")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("/data/müll"); !ok {
		t.Errorf("transcoded path missing, have %q", m.Paths())
	}
}

func TestLoadLegacyLatin1(t *testing.T) {
	content := append([]byte("aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d /caf"), 0xe9, '\n')

	path := filepath.Join(t.TempDir(), "legacy")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadLegacy(path, "latin1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("/café"); !ok {
		t.Errorf("transcoded path missing, have %q", m.Paths())
	}
}

func TestLoadLegacyUnknownEncoding(t *testing.T) {
	_, err := LoadLegacy("ignored", "ebcdic")
	if !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestLegacyEncodingsSorted(t *testing.T) {
	names := LegacyEncodings()
	if len(names) != 3 {
		t.Fatalf("expected 3 encodings, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}
