package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ripmedia/internal/model"
)

// SearchQuery builds the yt-dlp pseudo-URL for a catalog search.
func SearchQuery(query string, backend model.Backend, limit int) string {
	prefix := "ytsearch"
	if backend == model.BackendSoundCloud {
		prefix = "scsearch"
	}
	if limit <= 0 {
		limit = 5
	}
	return fmt.Sprintf("%s%d:%s", prefix, limit, query)
}

// Search runs a flat catalog search on backend. It satisfies the resolver's
// Searcher interface.
func (c *Client) Search(ctx context.Context, query string, backend model.Backend, limit int) ([]model.CandidateRecord, error) {
	cmd := c.command(nil).DumpSingleJSON().FlatPlaylist().SkipDownload()
	res, err := runCommand(ctx, cmd, SearchQuery(query, backend, limit))
	if err != nil {
		return nil, errors.New(cleanError(err, res))
	}
	if res == nil {
		return nil, errors.New("empty yt-dlp response")
	}
	return ParseSearchResults([]byte(res.Stdout))
}

// ParseSearchResults converts a flat search playlist into candidate records.
// Entries without a URL or ID are skipped.
func ParseSearchResults(payload []byte) ([]model.CandidateRecord, error) {
	var info map[string]any
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	raw, _ := info["entries"].([]any)
	out := make([]model.CandidateRecord, 0, len(raw))
	for _, e := range raw {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		url := firstString(entry, "webpage_url", "url", "id")
		if url == "" {
			continue
		}
		out = append(out, model.CandidateRecord{
			URL:             url,
			Title:           stringValue(entry["title"]),
			Channel:         stringValue(entry["channel"]),
			Uploader:        stringValue(entry["uploader"]),
			DurationSeconds: intValue(entry["duration"]),
		})
	}
	return out, nil
}
