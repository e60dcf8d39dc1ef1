package tagger

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"ripmedia/internal/httpx"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/services"
)

// ErrUnsupported marks files whose container has no tag writer.
var ErrUnsupported = fmt.Errorf("%w: unsupported file type", services.ErrTag)

const maxArtworkBytes = 20 << 20

// Artwork is cover image data with its MIME type.
type Artwork struct {
	Data []byte
	MIME string
}

// Result reports what was written.
type Result struct {
	ArtworkEmbedded bool
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithHTTPClient overrides the client used to fetch artwork.
func WithHTTPClient(hc *http.Client) Option {
	return func(t *Tagger) {
		if hc != nil {
			t.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tagger) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Tagger writes metadata into media files.
type Tagger struct {
	http   *http.Client
	logger *slog.Logger
}

// New constructs a Tagger.
func New(opts ...Option) *Tagger {
	t := &Tagger{http: httpx.NewClient(0), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.NewComponentLogger(t.logger, "tagger")
	return t
}

// Tag writes item's metadata into path. When artwork is nil and the item has
// an artwork URL the image is downloaded; a failed download only means no
// cover is embedded.
func (t *Tagger) Tag(ctx context.Context, path string, item model.Item, artwork *Artwork) (Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var write func(string, fields, *Artwork) error
	switch ext {
	case ".mp3":
		write = writeID3
	case ".m4a", ".mp4", ".m4v":
		write = writeMP4
	case ".flac":
		write = writeFLAC
	default:
		return Result{}, services.Wrap(ErrUnsupported, model.StageTagging, "Tagging not implemented for file type: "+ext, nil)
	}

	if artwork == nil && item.ArtworkURL != "" {
		artwork = t.fetchArtwork(ctx, item.ArtworkURL)
	}
	if err := write(path, fieldsFor(item), artwork); err != nil {
		return Result{}, services.Wrap(services.ErrTag, model.StageTagging,
			fmt.Sprintf("Failed to tag %s", strings.TrimPrefix(ext, ".")), err)
	}
	logging.WithContext(ctx, t.logger).Debug("tags written",
		logging.String(logging.FieldEventType, "tags_written"),
		logging.String("path", path),
		logging.Bool("artwork", artwork != nil),
	)
	return Result{ArtworkEmbedded: artwork != nil}, nil
}

func (t *Tagger) fetchArtwork(ctx context.Context, url string) *Artwork {
	body, header, err := httpx.GetBytes(ctx, t.http, url, maxArtworkBytes)
	if err != nil || len(body) == 0 {
		logging.WithContext(ctx, t.logger).Debug("artwork download failed",
			logging.String(logging.FieldEventType, "artwork_failed"),
			logging.String(logging.FieldURL, url),
			logging.Error(err),
		)
		return nil
	}
	mime := strings.ToLower(strings.TrimSpace(strings.Split(header.Get("Content-Type"), ";")[0]))
	if !strings.HasPrefix(mime, "image/") {
		mime = SniffImageMIME(body)
	}
	if mime == "" {
		mime = "image/jpeg"
	}
	return &Artwork{Data: body, MIME: mime}
}

// SniffImageMIME recognizes PNG, JPEG, WebP and GIF by magic bytes.
func SniffImageMIME(data []byte) string {
	switch {
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png"
	case len(data) >= 3 && string(data[:3]) == "\xff\xd8\xff":
		return "image/jpeg"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	case len(data) >= 6 && (string(data[:6]) == "GIF87a" || string(data[:6]) == "GIF89a"):
		return "image/gif"
	}
	return ""
}

// fields is the container-independent tag set.
type fields struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Track       int
	Disc        int
	Year        string
	Comment     string
	ISRC        string
}

func fieldsFor(item model.Item) fields {
	f := fields{
		Title:       item.Title,
		Artist:      item.Artist,
		Album:       item.Album,
		AlbumArtist: item.Artist,
		Track:       item.TrackNumber,
		Disc:        item.DiscNumber,
		ISRC:        item.ISRC(),
	}
	if f.Album == "" && item.Kind == model.KindTrack {
		f.Album = item.Title
	}
	if item.Year > 0 {
		f.Year = strconv.Itoa(item.Year)
	}
	if item.Attribution != nil {
		f.Comment = item.Attribution.Comment()
	}
	return f
}
