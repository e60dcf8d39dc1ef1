package textutil

import (
	"math"
	"testing"
)

func TestNormalizeForMatch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Simon & Garfunkel", "simon and garfunkel"},
		{"  Song (Official Video) ", "song official video"},
		{"AC/DC - T.N.T.", "ac dc t n t"},
		{"Beyoncé", "beyonc"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := NormalizeForMatch(tt.in); got != tt.want {
			t.Errorf("NormalizeForMatch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical after normalization", "Hello, World", "hello world", 1},
		{"empty side", "", "hello", 0},
		{"punctuation only", "???", "hello", 0},
		{"disjoint", "abc", "xyz", 0},
		// matching blocks "ab" and "d": 2*3/8
		{"partial", "abcd", "abxd", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	if Contains("Rick Astley - Topic", "rick astley") != 1 {
		t.Fatal("expected containment")
	}
	if Contains("Rick Astley", "") != 0 || Contains("", "rick") != 0 {
		t.Fatal("empty inputs must not match")
	}
	if Contains("Astley", "Rick Astley") != 0 {
		t.Fatal("unexpected containment")
	}
}

func TestFormatSpeed(t *testing.T) {
	value, unit := FormatSpeed(2_500_000, "MBps")
	if value != "  2.5" || unit != "MB/s" {
		t.Fatalf("unexpected MBps rendering %q %q", value, unit)
	}
	value, unit = FormatSpeed(2_500_000, "Mbps")
	if value != " 20.0" || unit != "Mb/s" {
		t.Fatalf("unexpected Mbps rendering %q %q", value, unit)
	}
}

func TestFormatSeconds(t *testing.T) {
	for in, want := range map[float64]string{0.42: "0.4s", 59.94: "59.9s", 125: "2m05s", -1: "0.0s"} {
		if got := FormatSeconds(in); got != want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	for in, want := range map[int64]string{512: "512 B", 1536: "1.5 KiB", 5 * 1024 * 1024: "5.0 MiB"} {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
