package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"ripmedia/internal/httpx"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/services"
)

const (
	defaultAPIBase   = "https://api.spotify.com/v1"
	defaultTokenURL  = "https://accounts.spotify.com/api/token"
	defaultOEmbedURL = "https://open.spotify.com/oembed"

	albumPageSize    = 50
	playlistPageSize = 100
	maxBody          = 8 << 20
)

// Option configures a Client.
type Option func(*Client)

// WithCredentials enables the Web API.
func WithCredentials(clientID, clientSecret string) Option {
	return func(c *Client) {
		c.clientID = strings.TrimSpace(clientID)
		c.clientSecret = strings.TrimSpace(clientSecret)
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithEndpoints points the client at alternate API, token and oEmbed URLs.
func WithEndpoints(apiBase, tokenURL, oembedURL string) Option {
	return func(c *Client) {
		if apiBase != "" {
			c.apiBase = strings.TrimRight(apiBase, "/")
		}
		if tokenURL != "" {
			c.tokenURL = tokenURL
		}
		if oembedURL != "" {
			c.oembedURL = oembedURL
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client fetches Spotify metadata.
type Client struct {
	http         *http.Client
	clientID     string
	clientSecret string
	apiBase      string
	tokenURL     string
	oembedURL    string
	logger       *slog.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
}

// New constructs a Client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      httpx.NewClient(0),
		apiBase:   defaultAPIBase,
		tokenURL:  defaultTokenURL,
		oembedURL: defaultOEmbedURL,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "spotify")
	return c
}

// HasCredentials reports whether the Web API can be used.
func (c *Client) HasCredentials() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// FetchMetadata normalizes a Spotify link.
func (c *Client) FetchMetadata(ctx context.Context, rawURL string) (model.Item, error) {
	ref, err := ParseURL(rawURL)
	if err != nil {
		return model.Item{}, err
	}
	logger := logging.WithContext(ctx, c.logger)

	if c.HasCredentials() {
		item, err := c.fetchAPI(ctx, ref)
		if err == nil {
			return item, nil
		}
		logger.Warn("spotify api request failed",
			logging.String(logging.FieldEventType, "spotify_api_failed"),
			logging.String(logging.FieldURL, ref.URL),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET"),
		)
	}
	if ref.Kind.IsCollection() {
		return model.Item{}, services.Errorf(services.ErrMetadata, model.StageMetadata,
			"Spotify album/playlist expansion requires API credentials. Set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET.")
	}
	return c.fetchOEmbed(ctx, ref)
}

func (c *Client) fetchAPI(ctx context.Context, ref Ref) (model.Item, error) {
	switch ref.Kind {
	case model.KindAlbum:
		return c.fetchAlbum(ctx, ref)
	case model.KindPlaylist:
		return c.fetchPlaylist(ctx, ref)
	default:
		var t apiTrack
		if err := c.getJSON(ctx, c.apiBase+"/tracks/"+url.PathEscape(ref.ID), &t); err != nil {
			return model.Item{}, err
		}
		item := t.item(nil, "")
		item.ID = ref.ID
		item.URL = ref.URL
		return item, nil
	}
}

func (c *Client) fetchAlbum(ctx context.Context, ref Ref) (model.Item, error) {
	var album apiAlbum
	if err := c.getJSON(ctx, c.apiBase+"/albums/"+url.PathEscape(ref.ID), &album); err != nil {
		return model.Item{}, err
	}
	artist := album.firstArtist()
	artwork := album.artwork()

	var entries []model.Item
	next := fmt.Sprintf("%s/albums/%s/tracks?limit=%d&offset=0", c.apiBase, url.PathEscape(ref.ID), albumPageSize)
	for next != "" {
		var page apiPage[apiTrack]
		if err := c.getJSON(ctx, next, &page); err != nil {
			return model.Item{}, err
		}
		for _, t := range page.Items {
			if t.ID == "" {
				continue
			}
			entry := t.item(&album, artwork)
			if entry.Artist == "" {
				entry.Artist = artist
			}
			entry.Extra = nil
			entries = append(entries, entry)
		}
		next = page.Next
	}

	return model.Item{
		Provider:    model.ProviderSpotify,
		Kind:        model.KindAlbum,
		ID:          ref.ID,
		URL:         ref.URL,
		Title:       album.Name,
		Artist:      artist,
		Album:       album.Name,
		Year:        yearOf(album.ReleaseDate),
		Date:        album.ReleaseDate,
		ArtworkURL:  artwork,
		Attribution: &model.Attribution{MetadataSource: model.ProviderSpotify},
		Entries:     entries,
		Extra:       map[string]any{"spotify": map[string]any{"total_tracks": len(entries)}},
	}, nil
}

func (c *Client) fetchPlaylist(ctx context.Context, ref Ref) (model.Item, error) {
	var pl apiPlaylist
	if err := c.getJSON(ctx, c.apiBase+"/playlists/"+url.PathEscape(ref.ID)+"?fields=name,images", &pl); err != nil {
		return model.Item{}, err
	}
	artwork := firstImage(pl.Images)

	var entries []model.Item
	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d&offset=0&additional_types=track", c.apiBase, url.PathEscape(ref.ID), playlistPageSize)
	for next != "" {
		var page apiPage[apiPlaylistItem]
		if err := c.getJSON(ctx, next, &page); err != nil {
			return model.Item{}, err
		}
		for _, it := range page.Items {
			if it.Track == nil || it.Track.ID == "" {
				continue
			}
			entry := it.Track.item(nil, artwork)
			entry.Extra["playlist_index"] = len(entries) + 1
			entries = append(entries, entry)
		}
		next = page.Next
	}

	return model.Item{
		Provider:    model.ProviderSpotify,
		Kind:        model.KindPlaylist,
		ID:          ref.ID,
		URL:         ref.URL,
		Title:       pl.Name,
		ArtworkURL:  artwork,
		Attribution: &model.Attribution{MetadataSource: model.ProviderSpotify},
		Entries:     entries,
		Extra:       map[string]any{"spotify": map[string]any{"total_tracks": len(entries)}},
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &httpx.StatusError{URL: endpoint, Status: resp.StatusCode}
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out)
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.expires) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token request: HTTP %d", resp.StatusCode)
	}
	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode spotify token: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("spotify token response missing access_token")
	}
	c.token = payload.AccessToken
	// Refresh a minute early.
	c.expires = time.Now().Add(time.Duration(max(payload.ExpiresIn-60, 0)) * time.Second)
	return c.token, nil
}

func yearOf(date string) int {
	head, _, _ := strings.Cut(strings.TrimSpace(date), "-")
	if len(head) != 4 {
		return 0
	}
	y, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return y
}
