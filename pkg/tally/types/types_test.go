package types

import (
	"testing"
	"time"
)

func TestEmptyDigestValue(t *testing.T) {
	// SHA-1 of zero bytes is a well-known constant.
	const want = "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	if got := EmptyDigest.Hex(); got != want {
		t.Errorf("EmptyDigest = %s, want %s", got, want)
	}
}

func TestZeroDigestValue(t *testing.T) {
	const want = "0000000000000000000000000000000000000000"
	if got := ZeroDigest.Hex(); got != want {
		t.Errorf("ZeroDigest = %s, want %s", got, want)
	}
}

func TestDigestReserved(t *testing.T) {
	if !ZeroDigest.IsReserved() || !ZeroDigest.IsZero() {
		t.Error("ZeroDigest should be reserved and zero")
	}
	if !EmptyDigest.IsReserved() || !EmptyDigest.IsEmpty() {
		t.Error("EmptyDigest should be reserved and empty")
	}

	d, err := ParseDigest("5ba93c9db0cff93f52b521d7420e43f6eda2784f")
	if err != nil {
		t.Fatal(err)
	}
	if d.IsReserved() {
		t.Error("genuine digest should not be reserved")
	}
}

func TestParseDigestRoundTrip(t *testing.T) {
	const hex = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"
	d, err := ParseDigest(hex)
	if err != nil {
		t.Fatal(err)
	}
	if d.Hex() != hex {
		t.Errorf("round trip = %s, want %s", d.Hex(), hex)
	}
}

func TestParseDigestRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"abcd",
		"zzf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
		"aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d00",
	}
	for _, c := range cases {
		if _, err := ParseDigest(c); err == nil {
			t.Errorf("ParseDigest(%q) should fail", c)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"0", 0, false},
		{"1024", 1024, false},
		{"512B", 512, false},
		{"100K", 100 * KiB, false},
		{"50MiB", 50 * MiB, false},
		{"2G", 2 * GiB, false},
		{"1.5M", int64(1.5 * float64(MiB)), false},
		{"1T", TiB, false},
		{"", 0, true},
		{"-5M", 0, true},
		{"abc", 0, true},
		{"10X", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSize(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSize(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestEntryHumanSize(t *testing.T) {
	e := Entry{Path: "a", Size: 2048}
	if got := e.HumanSize(); got != "2.0 KiB" {
		t.Errorf("HumanSize = %q", got)
	}

	unknown := Entry{Path: "b", Size: SizeUnknown}
	if got := unknown.HumanSize(); got != "?" {
		t.Errorf("HumanSize for unknown size = %q, want ?", got)
	}
}

func TestEntryModTimeZeroMeansUnknown(t *testing.T) {
	var e Entry
	if !e.ModTime.IsZero() {
		t.Error("zero-value entry should have unknown mod time")
	}
	e.ModTime = time.Unix(1700000000, 0)
	if e.ModTime.IsZero() {
		t.Error("set mod time should not read as unknown")
	}
}
