package model

import (
	"fmt"
	"strings"
)

// Provider identifies the site a source URL belongs to.
type Provider string

const (
	ProviderYouTube    Provider = "youtube"
	ProviderSoundCloud Provider = "soundcloud"
	ProviderSpotify    Provider = "spotify"
	ProviderTwitter    Provider = "twitter"
	ProviderUnknown    Provider = "unknown"
)

// MediaKind classifies a normalized item.
type MediaKind string

const (
	KindTrack    MediaKind = "track"
	KindVideo    MediaKind = "video"
	KindAlbum    MediaKind = "album"
	KindPlaylist MediaKind = "playlist"
)

// IsCollection reports whether the kind expands into sub-items.
func (k MediaKind) IsCollection() bool {
	return k == KindAlbum || k == KindPlaylist
}

// Backend is the closed set of catalog search backends the resolver can query.
type Backend string

const (
	BackendYouTube    Backend = "youtube"
	BackendSoundCloud Backend = "soundcloud"
)

// Backends lists every supported backend in preference order.
var Backends = []Backend{BackendYouTube, BackendSoundCloud}

// ParseBackend maps user input onto a Backend. Empty input selects YouTube.
func ParseBackend(value string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "youtube", "yt":
		return BackendYouTube, nil
	case "soundcloud", "sc":
		return BackendSoundCloud, nil
	default:
		return "", fmt.Errorf("unsupported resolver backend %q (want youtube or soundcloud)", value)
	}
}

// DisplayName returns the human label used in error messages.
func (b Backend) DisplayName() string {
	switch b {
	case BackendSoundCloud:
		return "SoundCloud"
	default:
		return "YouTube"
	}
}

// Provider returns the media provider a backend's results are served from.
func (b Backend) Provider() Provider {
	if b == BackendSoundCloud {
		return ProviderSoundCloud
	}
	return ProviderYouTube
}

// Attribution records where metadata and media were sourced from when they
// differ, for example Spotify metadata with YouTube audio.
type Attribution struct {
	MetadataSource Provider `json:"metadata_source"`
	MediaSource    Provider `json:"media_source,omitempty"`
}

// Comment renders the attribution as a tag comment.
func (a Attribution) Comment() string {
	if a.MediaSource == "" || a.MediaSource == a.MetadataSource {
		return "Metadata: " + string(a.MetadataSource)
	}
	return fmt.Sprintf("Metadata: %s, Media source: %s", a.MetadataSource, a.MediaSource)
}

// Item is the normalized metadata record produced by a metadata provider.
type Item struct {
	Provider        Provider       `json:"provider"`
	Kind            MediaKind      `json:"kind"`
	ID              string         `json:"id,omitempty"`
	URL             string         `json:"url"`
	Title           string         `json:"title,omitempty"`
	Artist          string         `json:"artist,omitempty"`
	Album           string         `json:"album,omitempty"`
	TrackNumber     int            `json:"track_number,omitempty"`
	DiscNumber      int            `json:"disc_number,omitempty"`
	Year            int            `json:"year,omitempty"`
	Date            string         `json:"date,omitempty"`
	DurationSeconds int            `json:"duration_seconds,omitempty"`
	ArtworkURL      string         `json:"artwork_url,omitempty"`
	Attribution     *Attribution   `json:"attribution,omitempty"`
	Entries         []Item         `json:"entries,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// ISRC returns the ISRC recorded in Extra, either at the top level or under
// the "spotify" key written by the Spotify provider.
func (it Item) ISRC() string {
	if it.Extra == nil {
		return ""
	}
	if v, ok := it.Extra["isrc"].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	switch sp := it.Extra["spotify"].(type) {
	case map[string]any:
		if v, ok := sp["isrc"].(string); ok {
			return strings.TrimSpace(v)
		}
	case map[string]string:
		return strings.TrimSpace(sp["isrc"])
	}
	return ""
}

// WantedKind distinguishes single items from collections in a WantedItem.
type WantedKind string

const (
	WantedSingle     WantedKind = "single"
	WantedCollection WantedKind = "collection"
)

// WantedItem describes the track the resolver should find.
type WantedItem struct {
	Title           string
	Artist          string
	DurationSeconds int
	ExternalID      string
	Kind            WantedKind
}

// HasDuration reports whether a positive expected duration is known.
func (w WantedItem) HasDuration() bool { return w.DurationSeconds > 0 }

// WantedFrom derives a WantedItem from normalized metadata.
func WantedFrom(item Item) WantedItem {
	kind := WantedSingle
	if item.Kind.IsCollection() {
		kind = WantedCollection
	}
	return WantedItem{
		Title:           strings.TrimSpace(item.Title),
		Artist:          strings.TrimSpace(item.Artist),
		DurationSeconds: item.DurationSeconds,
		ExternalID:      item.ISRC(),
		Kind:            kind,
	}
}

// CandidateRecord is one raw hit returned by a catalog search.
type CandidateRecord struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	Channel         string `json:"channel,omitempty"`
	Uploader        string `json:"uploader,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// HasDuration reports whether the candidate carries a positive duration.
func (c CandidateRecord) HasDuration() bool { return c.DurationSeconds > 0 }

// ResolvedSource is a scored, downloadable candidate.
type ResolvedSource struct {
	URL              string  `json:"url"`
	Backend          Backend `json:"backend"`
	Confidence       float64 `json:"confidence"`
	ConfidenceHint   string  `json:"confidence_hint,omitempty"`
	SelectedTitle    string  `json:"selected_title,omitempty"`
	SelectedUploader string  `json:"selected_uploader,omitempty"`
}
