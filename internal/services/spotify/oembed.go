package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ripmedia/internal/httpx"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/services"
)

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Type         string `json:"type"`
	Provider     string `json:"provider_name"`
}

func (c *Client) fetchOEmbed(ctx context.Context, ref Ref) (model.Item, error) {
	endpoint := c.oembedURL + "?url=" + url.QueryEscape(ref.URL)
	body, _, err := httpx.GetBytes(ctx, c.http, endpoint, maxBody)
	var data oembedResponse
	if err == nil {
		err = json.Unmarshal(body, &data)
	}
	if err != nil {
		return model.Item{}, services.Wrap(services.ErrMetadata, model.StageMetadata,
			"Spotify metadata requires credentials (SPOTIFY_CLIENT_ID/SECRET) or oEmbed access.", err)
	}

	item := model.Item{
		Provider:    model.ProviderSpotify,
		Kind:        ref.Kind,
		ID:          ref.ID,
		URL:         ref.URL,
		Title:       data.Title,
		Artist:      data.AuthorName,
		ArtworkURL:  data.ThumbnailURL,
		Attribution: &model.Attribution{MetadataSource: model.ProviderSpotify},
		Extra:       map[string]any{"spotify_oembed": data},
	}

	page, _, err := httpx.GetBytes(ctx, c.http, ref.URL, maxBody)
	if err != nil {
		logging.WithContext(ctx, c.logger).Debug("spotify page enrichment skipped",
			logging.String(logging.FieldEventType, "spotify_page_skipped"),
			logging.Error(err),
		)
		return item, nil
	}
	meta, err := ParsePageMeta(page)
	if err != nil {
		return item, nil
	}
	meta.apply(&item)
	return item, nil
}

// PageMeta is the subset of a track page's Open Graph and music tags used to
// fill gaps left by oEmbed.
type PageMeta struct {
	Title           string
	Artist          string
	Album           string
	Image           string
	ReleaseDate     string
	DurationSeconds int
}

// ParsePageMeta reads og:* and music:* meta tags from a Spotify track page.
// og:description has the form "Artist · Album · Song · 2020".
func ParsePageMeta(page []byte) (PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return PageMeta{}, err
	}
	content := func(key string) string {
		sel := doc.Find(`meta[property="` + key + `"]`)
		if sel.Length() == 0 {
			sel = doc.Find(`meta[name="` + key + `"]`)
		}
		v, _ := sel.First().Attr("content")
		return strings.TrimSpace(v)
	}

	meta := PageMeta{
		Title:       content("og:title"),
		Image:       content("og:image"),
		ReleaseDate: content("music:release_date"),
	}
	if d, err := strconv.Atoi(content("music:duration")); err == nil && d > 0 {
		meta.DurationSeconds = d
	}
	parts := strings.Split(content("og:description"), "·")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 && parts[0] != "" {
		meta.Artist = parts[0]
	}
	if len(parts) >= 4 {
		meta.Album = parts[1]
	}
	if meta.Artist == "" {
		meta.Artist = content("music:musician_description")
	}
	return meta, nil
}

func (m PageMeta) apply(item *model.Item) {
	if item.Title == "" {
		item.Title = m.Title
	}
	if item.Artist == "" {
		item.Artist = m.Artist
	}
	if item.Album == "" {
		item.Album = m.Album
	}
	if item.ArtworkURL == "" {
		item.ArtworkURL = m.Image
	}
	if item.DurationSeconds == 0 {
		item.DurationSeconds = m.DurationSeconds
	}
	if item.Date == "" && m.ReleaseDate != "" {
		item.Date = m.ReleaseDate
		item.Year = yearOf(m.ReleaseDate)
	}
}
