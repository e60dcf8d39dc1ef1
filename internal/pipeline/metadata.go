package pipeline

import (
	"context"

	"ripmedia/internal/model"
	"ripmedia/internal/services"
	"ripmedia/internal/urls"
)

// SpotifyMetadata fetches Spotify catalog metadata.
type SpotifyMetadata interface {
	FetchMetadata(ctx context.Context, url string) (model.Item, error)
}

// ExtractorMetadata fetches metadata for sites the download engine supports.
type ExtractorMetadata interface {
	FetchMetadata(ctx context.Context, url string, provider model.Provider) (model.Item, error)
}

// Router dispatches metadata requests by provider.
type Router struct {
	Spotify   SpotifyMetadata
	Extractor ExtractorMetadata
}

// FetchMetadata implements MetadataSource.
func (r Router) FetchMetadata(ctx context.Context, url string) (model.Item, error) {
	switch provider := urls.DetectProvider(url); provider {
	case model.ProviderSpotify:
		if r.Spotify != nil {
			return r.Spotify.FetchMetadata(ctx, url)
		}
	case model.ProviderYouTube, model.ProviderSoundCloud, model.ProviderTwitter:
		if r.Extractor != nil {
			return r.Extractor.FetchMetadata(ctx, url, provider)
		}
	}
	return model.Item{}, services.Errorf(services.ErrDetect, model.StageDetected, "Unsupported/unknown provider URL.")
}
