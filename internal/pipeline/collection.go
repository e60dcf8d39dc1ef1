package pipeline

import (
	"context"
	"fmt"
	"os"

	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/paths"
	"ripmedia/internal/services"
)

// runCollection downloads every entry of an album or playlist in order into
// the collection folder.
func (e *Engine) runCollection(ctx context.Context, item model.Item, opts Options, st *stepper, chooser Chooser) ([]string, error) {
	if len(item.Entries) == 0 {
		err := services.Errorf(services.ErrMetadata, model.StageMetadata,
			"This collection has no entries (or expansion is unsupported).")
		st.fail(model.StageMetadata, e.now(), err)
		return nil, err
	}

	folder := paths.CollectionDirectory(item, opts.OutputDir)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		err = services.Wrap(services.ErrDownload, model.StageDownloading, "Failed to create collection folder", err)
		st.fail(model.StageSaved, e.now(), err)
		return nil, err
	}

	total := len(item.Entries)
	var (
		saved    []string
		failures []services.Failure
	)
	for i, raw := range item.Entries {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		entry := InheritFromParent(raw, item)
		st.rep.Entry(i+1, total, entry)

		path, err := e.runSingle(ctx, entry, folder, opts, st, chooser, true)
		if err != nil {
			message, stage := services.Details(err)
			failures = append(failures, services.Failure{URL: raw.URL, Message: message, Stage: stage})
			st.logger.Warn("collection entry failed",
				logging.String(logging.FieldEventType, "collection_entry_failed"),
				logging.String(logging.FieldURL, raw.URL),
				logging.Int("index", i+1),
				logging.Error(err),
			)
			continue
		}
		saved = append(saved, path)
	}

	st.ok(model.StageSaved, folder, e.now())
	switch {
	case len(failures) == 0:
		return saved, nil
	case len(saved) > 0:
		return saved, &services.PartialSuccessError{
			Message:  fmt.Sprintf("%d/%d items failed", len(failures), total),
			Stage:    model.StageDownloading,
			Saved:    saved,
			Failures: failures,
		}
	default:
		return nil, &services.PartialSuccessError{
			Message:  "All items in the collection failed.",
			Stage:    model.StageDownloading,
			Failures: failures,
		}
	}
}

// InheritFromParent fills an entry's album, artist and artwork from its
// collection when the entry lacks them. The parent album falls back to the
// parent title.
func InheritFromParent(entry, parent model.Item) model.Item {
	album := parent.Album
	if album == "" {
		album = parent.Title
	}
	if entry.Album == "" {
		entry.Album = album
	}
	if entry.Artist == "" {
		entry.Artist = parent.Artist
	}
	if entry.ArtworkURL == "" {
		entry.ArtworkURL = parent.ArtworkURL
	}
	return entry
}
