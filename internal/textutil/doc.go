// Package textutil provides the text helpers behind candidate matching and
// user-facing formatting.
//
// Matching normalizes titles and artist names to lowercase alphanumeric words
// and compares them with the Ratcliff/Obershelp ratio from go-difflib, so
// punctuation, casing and "&" versus "and" never affect a score. The
// formatting helpers render transfer speeds, durations and byte counts for
// the CLI and the web host.
package textutil
