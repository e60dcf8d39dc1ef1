// Package ytdlp wraps the yt-dlp binary through github.com/lrstanley/go-ytdlp.
//
// One Client serves three roles: it fetches normalized metadata for YouTube
// and SoundCloud URLs, runs flat catalog searches for the resolver, and
// downloads media into a private temporary directory before moving the
// result to its planned path. Command execution goes through a package-level
// runner so tests can script yt-dlp output without the binary installed.
package ytdlp
