package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Historical manifests were written in whatever 8-bit encoding the
// producing platform happened to use. Reading them is an explicit one-shot
// import operation ("tally import") that rewrites the manifest to the
// canonical UTF-8 form; a legacy encoding is never applied as an ambient
// default.
var legacyEncodings = map[string]encoding.Encoding{
	"cp437":        charmap.CodePage437,
	"latin1":       charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
}

// ErrUnknownEncoding indicates an encoding name outside the supported
// legacy set.
var ErrUnknownEncoding = errors.New("unknown legacy encoding")

// LegacyEncodings returns the supported legacy encoding names, sorted.
func LegacyEncodings() []string {
	names := make([]string, 0, len(legacyEncodings))
	for name := range legacyEncodings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadLegacy reads a manifest written in the named legacy encoding,
// transcoding it to UTF-8 before parsing. The result carries the parsed
// version; saving it writes the canonical current-version form.
func LoadLegacy(path, encodingName string) (*Manifest, error) {
	enc, ok := legacyEncodings[encodingName]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownEncoding, encodingName, LegacyEncodings())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", path, encodingName, err)
	}

	m, err := Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
