package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallylabs/tally/pkg/tally/dupes"
	"github.com/tallylabs/tally/pkg/tally/types"
)

func testDigest(b byte) types.Digest {
	var d types.Digest
	d[0] = b
	return d
}

func testReport() *Report {
	groups := []dupes.Group{
		{Hash: testDigest(1), Size: 1024, Paths: []string{"/data/a.bin", "/backup/a.bin", "/tmp/a.bin"}},
		{Hash: testDigest(2), Size: 2048, Paths: []string{"/data/b.bin", "/backup/b.bin"}},
	}
	summary := dupes.Summary{
		Entries:         10,
		UniqueHashes:    7,
		DuplicateGroups: 2,
		DuplicateFiles:  5,
		WastedBytes:     4096,
		Unreadable:      1,
		Empty:           2,
	}
	return BuildReport("/home/user/.local/share/tally/manifest.tly", groups, summary)
}

func TestBuildReport(t *testing.T) {
	r := testReport()

	require.Len(t, r.Groups, 2)
	assert.Equal(t, 3, r.Groups[0].Count)
	assert.Equal(t, "1.0 KiB", r.Groups[0].SizeHuman)
	assert.Equal(t, int64(2048), r.Groups[0].WastedBytes)
	assert.Equal(t, "2.0 KiB", r.Groups[0].WastedHuman)
	assert.Equal(t, "4.0 KiB", r.Summary.WastedHuman)
	assert.Equal(t, 1, r.Summary.Unreadable)
	assert.False(t, r.GeneratedAt.IsZero())
}

func TestBuildReportUnknownSize(t *testing.T) {
	groups := []dupes.Group{
		{Hash: testDigest(1), Size: types.SizeUnknown, Paths: []string{"a", "b"}},
	}
	r := BuildReport("m", groups, dupes.Summary{})
	assert.Equal(t, "?", r.Groups[0].SizeHuman)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", func() Formatter { return &PlainFormatter{} })

	f, err := reg.Get("test")
	require.NoError(t, err)
	assert.IsType(t, &PlainFormatter{}, f)

	_, err = reg.Get("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown formatter")
}

func TestDefaultRegistryHasAllFormatters(t *testing.T) {
	names := Available()
	for _, want := range []string{"plain", "json", "jsonl", "yaml", "table", "pretty"} {
		assert.Contains(t, names, want)
	}
}

func TestAvailableIsSorted(t *testing.T) {
	names := Available()
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}
