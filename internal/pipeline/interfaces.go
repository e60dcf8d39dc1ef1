package pipeline

import (
	"context"

	"ripmedia/internal/model"
	"ripmedia/internal/tagger"
)

// MetadataSource normalizes a URL into an Item.
type MetadataSource interface {
	FetchMetadata(ctx context.Context, url string) (model.Item, error)
}

// Resolver ranks downloadable candidates for a catalog-only track.
type Resolver interface {
	ResolveCandidates(ctx context.Context, wanted model.WantedItem, backend model.Backend, limit int) ([]model.ResolvedSource, error)
}

// Fetcher downloads media.
type Fetcher interface {
	Fetch(ctx context.Context, req model.FetchRequest, hooks model.FetchHooks) (model.FetchResult, error)
}

// Tagger writes metadata into a saved file.
type Tagger interface {
	Tag(ctx context.Context, path string, item model.Item, artwork *tagger.Artwork) (tagger.Result, error)
}

// Chooser is the interactive selection capability. It receives the ranked
// candidates and returns the raw 1-based answer; an empty answer selects the
// first candidate. A nil Chooser means the run is non-interactive.
type Chooser interface {
	Choose(ctx context.Context, candidates []model.ResolvedSource) (string, error)
}

// Reporter observes a run.
type Reporter interface {
	// Meta is called once metadata for the top-level URL is known.
	Meta(item model.Item)
	// Entry announces entry index (1-based) of total in a collection.
	Entry(index, total int, item model.Item)
	// StageStarted is called before a long-running stage begins.
	StageStarted(stage, detail string)
	Step(ev model.StageEvent)
	Progress(p model.Progress)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Meta(model.Item) {}
func (NopReporter) Entry(int, int, model.Item) {}
func (NopReporter) StageStarted(string, string) {}
func (NopReporter) Step(model.StageEvent) {}
func (NopReporter) Progress(model.Progress) {}
