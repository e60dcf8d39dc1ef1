// Package tagger writes title, artist, album, numbering, attribution comment
// and cover art into downloaded files.
//
// MP3 files use ID3v2 (bogem/id3v2), M4A/MP4 files use iTunes atoms
// (zhaarey/go-mp4tag) and FLAC files use Vorbis comments plus a picture
// block (go-flac). Other extensions return ErrUnsupported, which the pipeline
// records as a skipped step rather than a failure.
package tagger
