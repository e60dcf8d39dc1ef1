// Package resolver finds downloadable sources for catalog-only tracks such as
// Spotify links.
//
// It builds up to two search queries (with and without the ISRC), asks a
// Searcher for hits on the chosen backend, drops duplicate URLs keeping the
// first, scores each hit with package scoring, and returns the best matches in
// descending confidence. The Searcher used in production is the yt-dlp client
// in services/ytdlp; tests use a scripted fake.
package resolver
