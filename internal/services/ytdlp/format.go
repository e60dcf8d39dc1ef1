package ytdlp

import "strings"

// FormatSpec is the yt-dlp format and post-processing selection for one
// download.
type FormatSpec struct {
	Selector      string
	ExtractAudio  string
	RecodeVideo   string
	MergeOutput   string
	PostProcessor string
}

// SelectFormat picks the format selector for a download of the given kind
// and target extension.
func SelectFormat(audio bool, ext string, recode bool) FormatSpec {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	switch {
	case audio:
		return FormatSpec{Selector: "bestaudio/best", ExtractAudio: ext, PostProcessor: "ExtractAudio"}
	case recode:
		return FormatSpec{Selector: "bestvideo*+bestaudio/best", RecodeVideo: ext, PostProcessor: "VideoConvertor"}
	case ext == "mp4":
		return FormatSpec{
			Selector:      "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
			MergeOutput:   ext,
			PostProcessor: "Merger",
		}
	default:
		return FormatSpec{Selector: "bestvideo*+bestaudio/best", MergeOutput: ext, PostProcessor: "Merger"}
	}
}
