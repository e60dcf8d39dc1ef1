package main

import (
	"strings"

	"ripmedia/internal/model"
)

// hintFor suggests a next step for failures with a known cause, or "".
func hintFor(stage, message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "403") || strings.Contains(m, "forbidden"):
		return "The site refused the request. Update yt-dlp, or pass --cookies / --cookies-from-browser for gated media."
	case strings.Contains(m, "ffmpeg") || strings.Contains(m, "ffprobe"):
		return "ffmpeg is required for audio extraction and merging. Install it and make sure it is on PATH."
	case strings.Contains(m, "javascript runtime") || strings.Contains(m, "js runtime"):
		return "yt-dlp needs a JavaScript runtime for this site. Update yt-dlp and install deno or node."
	case stage == model.StageMetadata && (strings.Contains(m, "client_id") || strings.Contains(m, "credentials")):
		return "Set [spotify] client_id and client_secret (or SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET) for albums and playlists."
	case stage == model.StageResolve && strings.Contains(m, "low confidence"):
		return "Run again with --interactive to pick the match yourself, or try --resolver soundcloud."
	case strings.Contains(m, "sign in to confirm"),
		strings.Contains(m, "cookies") && (strings.Contains(m, "required") || strings.Contains(m, "needed")):
		return "This media needs a signed-in session. Pass --cookies <file> or --cookies-from-browser <browser>."
	}
	return ""
}
