package spotify

import (
	"net/url"
	"strings"

	"ripmedia/internal/model"
	"ripmedia/internal/services"
)

// Ref identifies one Spotify object.
type Ref struct {
	Kind model.MediaKind
	ID   string
	URL  string
}

var refKinds = map[string]model.MediaKind{
	"track":    model.KindTrack,
	"album":    model.KindAlbum,
	"playlist": model.KindPlaylist,
}

// ParseURL extracts the object type and ID from a Spotify link. Localized
// "/intl-xx/" prefixes and "spotify:type:id" URIs are accepted.
func ParseURL(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	var parts []string
	if strings.HasPrefix(raw, "spotify:") {
		parts = strings.Split(strings.TrimPrefix(raw, "spotify:"), ":")
	} else {
		u, err := url.Parse(raw)
		if err != nil {
			return Ref{}, unrecognized()
		}
		for _, p := range strings.Split(u.Path, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 && strings.HasPrefix(parts[0], "intl-") {
			parts = parts[1:]
		}
	}
	if len(parts) < 2 || parts[1] == "" {
		return Ref{}, unrecognized()
	}
	kind, ok := refKinds[parts[0]]
	if !ok {
		return Ref{}, services.Errorf(services.ErrDetect, model.StageDetected, "Unsupported Spotify type: %s", parts[0])
	}
	return Ref{Kind: kind, ID: parts[1], URL: raw}, nil
}

func unrecognized() error {
	return services.Errorf(services.ErrDetect, model.StageDetected, "Unrecognized Spotify URL.")
}

// TrackURL is the canonical web URL for a track ID.
func TrackURL(id string) string {
	return "https://open.spotify.com/track/" + id
}
