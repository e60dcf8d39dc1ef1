package ytdlp

import (
	"context"
	"encoding/json"
	"strings"

	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/services"
)

var keptInfoKeys = []string{
	"id", "title", "duration", "webpage_url", "extractor", "extractor_key",
	"uploader", "channel", "artist", "album", "track_number", "release_year",
	"upload_date", "thumbnail",
}

// FetchMetadata extracts metadata for url without downloading media.
// Playlists are listed flat so large channels stay fast.
func (c *Client) FetchMetadata(ctx context.Context, url string, provider model.Provider) (model.Item, error) {
	cmd := c.command(nil).DumpSingleJSON().FlatPlaylist().SkipDownload()
	res, err := runCommand(ctx, cmd, url)
	if err != nil {
		return model.Item{}, services.Wrap(services.ErrMetadata, model.StageMetadata,
			"Failed to fetch metadata via yt-dlp: "+cleanError(err, res), nil)
	}
	var info map[string]any
	if res == nil || json.Unmarshal([]byte(res.Stdout), &info) != nil || info == nil {
		return model.Item{}, services.Errorf(services.ErrMetadata, model.StageMetadata, "Unexpected yt-dlp metadata response.")
	}
	item := ItemFromInfo(info, provider, url)
	logging.WithContext(ctx, c.logger).Debug("metadata fetched",
		logging.String(logging.FieldEventType, "metadata_fetched"),
		logging.String(logging.FieldProvider, string(provider)),
		logging.String("kind", string(item.Kind)),
		logging.Int("entries", len(item.Entries)),
	)
	return item, nil
}

// ItemFromInfo normalizes a yt-dlp info dictionary.
func ItemFromInfo(info map[string]any, provider model.Provider, url string) model.Item {
	kind := guessKind(info)
	artist := firstString(info, "artist", "uploader", "channel")
	item := model.Item{
		Provider:        provider,
		Kind:            kind,
		ID:              stringValue(info["id"]),
		URL:             url,
		Title:           stringValue(info["title"]),
		Artist:          artist,
		Album:           stringValue(info["album"]),
		TrackNumber:     intValue(info["track_number"]),
		Year:            intValue(info["release_year"]),
		Date:            stringValue(info["upload_date"]),
		DurationSeconds: intValue(info["duration"]),
		ArtworkURL:      pickThumbnail(info),
		Extra:           map[string]any{"ytdlp": minimizeInfo(info)},
	}
	if kind == model.KindPlaylist {
		item.Entries = playlistEntries(info, provider)
	}
	return item
}

func guessKind(info map[string]any) model.MediaKind {
	if stringValue(info["_type"]) == "playlist" || stringValue(info["ie_key"]) == "YoutubeTab" {
		return model.KindPlaylist
	}
	if vcodec := strings.ToLower(stringValue(info["vcodec"])); vcodec != "" && vcodec != "none" {
		return model.KindVideo
	}
	return model.KindTrack
}

func minimizeInfo(info map[string]any) map[string]any {
	out := make(map[string]any, len(keptInfoKeys))
	for _, k := range keptInfoKeys {
		if v, ok := info[k]; ok {
			out[k] = v
		}
	}
	return out
}

func pickThumbnail(info map[string]any) string {
	if thumb := stringValue(info["thumbnail"]); thumb != "" {
		return thumb
	}
	thumbs, _ := info["thumbnails"].([]any)
	for i := len(thumbs) - 1; i >= 0; i-- {
		if t, ok := thumbs[i].(map[string]any); ok {
			if u := stringValue(t["url"]); u != "" {
				return u
			}
		}
	}
	return ""
}

func playlistEntries(info map[string]any, provider model.Provider) []model.Item {
	raw, _ := info["entries"].([]any)
	entries := make([]model.Item, 0, len(raw))
	for idx, e := range raw {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		url := firstString(entry, "webpage_url", "url")
		if url == "" {
			continue
		}
		track := intValue(entry["playlist_index"])
		if track == 0 {
			track = idx + 1
		}
		entries = append(entries, model.Item{
			Provider:        provider,
			Kind:            model.KindVideo,
			ID:              stringValue(entry["id"]),
			URL:             url,
			Title:           stringValue(entry["title"]),
			TrackNumber:     track,
			DurationSeconds: intValue(entry["duration"]),
			ArtworkURL:      pickThumbnail(entry),
		})
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := stringValue(m[k]); v != "" {
			return v
		}
	}
	return ""
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func intValue(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}
