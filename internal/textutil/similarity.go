package textutil

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeForMatch lowercases s, spells out "&", and collapses every run of
// non-alphanumeric characters into a single space.
func NormalizeForMatch(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Similarity returns the Ratcliff/Obershelp ratio of the normalized strings.
// Either side normalizing to empty yields 0.
func Similarity(a, b string) float64 {
	a = NormalizeForMatch(a)
	b = NormalizeForMatch(b)
	if a == "" || b == "" {
		return 0
	}
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

// Contains reports 1 when the normalized needle occurs inside the normalized
// haystack, else 0. Empty inputs never match.
func Contains(haystack, needle string) float64 {
	h := NormalizeForMatch(haystack)
	n := NormalizeForMatch(needle)
	if h == "" || n == "" {
		return 0
	}
	if strings.Contains(h, n) {
		return 1
	}
	return 0
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
