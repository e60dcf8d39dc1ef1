package testsupport

import (
	"context"
	"testing"
	"time"

	"ripmedia/internal/config"
	"ripmedia/internal/history"
	"ripmedia/internal/model"
)

// MustOpenHistory opens the history store for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordDone stores a finished entry for url with the given saved paths.
func RecordDone(t testing.TB, store *history.Store, url, title string, paths ...string) history.Entry {
	t.Helper()

	now := time.Now().UTC()
	entry := history.Entry{
		URL:        url,
		Title:      title,
		Status:     model.StatusDone,
		Paths:      paths,
		StartedAt:  now.Add(-time.Second),
		FinishedAt: now,
	}
	id, err := store.Record(context.Background(), entry)
	if err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	entry.ID = id
	return entry
}
