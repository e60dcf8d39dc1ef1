package spotify

import "ripmedia/internal/model"

type apiImage struct {
	URL string `json:"url"`
}

type apiArtist struct {
	Name string `json:"name"`
}

type apiAlbum struct {
	Name        string      `json:"name"`
	ReleaseDate string      `json:"release_date"`
	Artists     []apiArtist `json:"artists"`
	Images      []apiImage  `json:"images"`
}

func (a *apiAlbum) firstArtist() string {
	if a == nil || len(a.Artists) == 0 {
		return ""
	}
	return a.Artists[0].Name
}

func (a *apiAlbum) artwork() string {
	if a == nil {
		return ""
	}
	return firstImage(a.Images)
}

type apiTrack struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []apiArtist `json:"artists"`
	Album       *apiAlbum   `json:"album"`
	TrackNumber int         `json:"track_number"`
	DiscNumber  int         `json:"disc_number"`
	DurationMS  int         `json:"duration_ms"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
}

// item normalizes t. parent supplies album fields for simplified album
// tracks; fallbackArtwork is used when no album image is present.
func (t apiTrack) item(parent *apiAlbum, fallbackArtwork string) model.Item {
	album := t.Album
	if album == nil {
		album = parent
	}
	artist := ""
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}
	var albumName, releaseDate string
	if album != nil {
		albumName = album.Name
		releaseDate = album.ReleaseDate
	}
	artwork := album.artwork()
	if artwork == "" {
		artwork = fallbackArtwork
	}
	return model.Item{
		Provider:        model.ProviderSpotify,
		Kind:            model.KindTrack,
		ID:              t.ID,
		URL:             TrackURL(t.ID),
		Title:           t.Name,
		Artist:          artist,
		Album:           albumName,
		TrackNumber:     t.TrackNumber,
		DiscNumber:      t.DiscNumber,
		Year:            yearOf(releaseDate),
		Date:            releaseDate,
		DurationSeconds: t.DurationMS / 1000,
		ArtworkURL:      artwork,
		Attribution:     &model.Attribution{MetadataSource: model.ProviderSpotify},
		Extra:           map[string]any{"spotify": map[string]any{"isrc": t.ExternalIDs.ISRC}},
	}
}

type apiPlaylist struct {
	Name   string     `json:"name"`
	Images []apiImage `json:"images"`
}

type apiPlaylistItem struct {
	Track *apiTrack `json:"track"`
}

type apiPage[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next"`
}

func firstImage(images []apiImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
