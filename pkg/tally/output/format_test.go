package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tallylabs/tally/pkg/tally/dupes"
)

func format(t *testing.T, name string, r *Report) string {
	t.Helper()
	f, err := Get(name)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))
	return buf.String()
}

func TestPlainFormat(t *testing.T) {
	out := format(t, "plain", testReport())

	assert.Contains(t, out, "HASH")
	assert.Contains(t, out, "/data/a.bin")
	assert.Contains(t, out, "/backup/b.bin")
	assert.Contains(t, out, "2 groups, 5 files, 4.0 KiB wasted")

	// One line per member plus header and summary.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.GreaterOrEqual(t, len(lines), 6)
}

func TestPlainFormatEmptyReport(t *testing.T) {
	r := BuildReport("m", nil, dupes.Summary{})
	out := format(t, "plain", r)
	assert.Contains(t, out, "HASH")
}

func TestJSONFormat(t *testing.T) {
	out := format(t, "json", testReport())

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	groups, ok := decoded["groups"].([]interface{})
	require.True(t, ok)
	assert.Len(t, groups, 2)

	first := groups[0].(map[string]interface{})
	assert.Equal(t, float64(3), first["count"])
	assert.Equal(t, "1.0 KiB", first["size_human"])

	summary := decoded["summary"].(map[string]interface{})
	assert.Equal(t, float64(4096), summary["wasted_bytes"])
}

func TestJSONLFormat(t *testing.T) {
	out := format(t, "jsonl", testReport())

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var g map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &g))
		assert.NotEmpty(t, g["hash"])
	}
}

func TestYAMLFormat(t *testing.T) {
	out := format(t, "yaml", testReport())

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))

	groups, ok := decoded["groups"].([]interface{})
	require.True(t, ok)
	assert.Len(t, groups, 2)
}

func TestTableFormat(t *testing.T) {
	out := format(t, "table", testReport())

	assert.Contains(t, out, "GROUP")
	assert.Contains(t, out, "/data/a.bin")
	assert.Contains(t, out, "2 groups")
}

func TestPrettyFormat(t *testing.T) {
	out := format(t, "pretty", testReport())

	assert.Contains(t, out, "Manifest:")
	assert.Contains(t, out, "Group 1")
	assert.Contains(t, out, "3 files")
	assert.Contains(t, out, "/data/a.bin")
	assert.Contains(t, out, "Wasted:")
	assert.Contains(t, out, "unreadable: 1")
}

func TestPrettyFormatNoGroups(t *testing.T) {
	r := testReport()
	r.Groups = nil
	out := format(t, "pretty", r)
	assert.Contains(t, out, "No duplicate groups found")
}
