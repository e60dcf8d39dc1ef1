// Package scoring ranks search candidates against a wanted track.
//
// A score blends title similarity, artist similarity (against channel,
// uploader and title) and, when both sides know it, how close the durations
// are. A candidate whose text contains the wanted ISRC gets a fixed bonus.
// Scores are clamped to [0,1] and depend only on their inputs.
package scoring
