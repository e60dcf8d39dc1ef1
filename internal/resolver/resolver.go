package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/scoring"
	"ripmedia/internal/services"
)

const (
	// DefaultLimit is the number of ranked candidates returned when the caller
	// passes a non-positive limit.
	DefaultLimit = 5
	// minSearchHits is the floor on hits requested per query.
	minSearchHits = 5
)

// Searcher runs a catalog search on one backend and returns raw hits.
type Searcher interface {
	Search(ctx context.Context, query string, backend model.Backend, limit int) ([]model.CandidateRecord, error)
}

// Resolver turns a wanted track into ranked, downloadable candidates.
type Resolver struct {
	searcher Searcher
	scorer   scoring.Scorer
	logger   *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithScorer overrides the default scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(r *Resolver) { r.scorer = s }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New constructs a Resolver backed by searcher.
func New(searcher Searcher, opts ...Option) *Resolver {
	r := &Resolver{searcher: searcher, scorer: scoring.New(0), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	return r
}

// ResolveCandidates searches backend for wanted and returns at most limit
// candidates ranked by descending confidence. Ties keep discovery order.
// An empty result is not an error.
func (r *Resolver) ResolveCandidates(ctx context.Context, wanted model.WantedItem, backend model.Backend, limit int) ([]model.ResolvedSource, error) {
	if strings.TrimSpace(wanted.Title) == "" {
		return nil, services.Wrap(services.ErrResolve, model.StageResolve, "missing title; cannot resolve", nil)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	hits := max(limit, minSearchHits)
	logger := logging.WithContext(ctx, r.logger)

	var records []model.CandidateRecord
	for _, query := range Queries(wanted) {
		found, err := r.searcher.Search(ctx, query, backend, hits)
		if err != nil {
			return nil, services.Wrap(services.ErrResolve, model.StageResolve, backend.DisplayName()+" search failed", err)
		}
		logger.Debug("search completed",
			logging.String(logging.FieldEventType, "resolver_search"),
			logging.String(logging.FieldBackend, string(backend)),
			logging.String("query", query),
			logging.Int("hits", len(found)),
		)
		records = append(records, found...)
	}
	if len(records) == 0 {
		return []model.ResolvedSource{}, nil
	}

	seen := make(map[string]struct{}, len(records))
	ranked := make([]model.ResolvedSource, 0, len(records))
	for _, rec := range records {
		url := CandidateURL(backend, rec.URL)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		uploader := rec.Channel
		if uploader == "" {
			uploader = rec.Uploader
		}
		ranked = append(ranked, model.ResolvedSource{
			URL:              url,
			Backend:          backend,
			Confidence:       r.scorer.Score(wanted, rec),
			ConfidenceHint:   DurationHint(wanted.DurationSeconds, rec.DurationSeconds),
			SelectedTitle:    rec.Title,
			SelectedUploader: uploader,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if len(ranked) > 0 {
		logger.Info("resolver candidates ranked",
			logging.String(logging.FieldEventType, "resolve_candidates"),
			logging.String(logging.FieldBackend, string(backend)),
			logging.Int("candidates", len(ranked)),
			logging.Float64("best_confidence", ranked[0].Confidence),
			logging.String("best_url", ranked[0].URL),
		)
	}
	return ranked, nil
}

// Queries returns the search strings for wanted in the order they run:
// "artist - title isrc" when an external ID is known, then "artist - title".
func Queries(wanted model.WantedItem) []string {
	parts := make([]string, 0, 2)
	for _, p := range []string{wanted.Artist, wanted.Title} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	base := strings.Join(parts, " - ")
	queries := make([]string, 0, 2)
	if id := strings.TrimSpace(wanted.ExternalID); id != "" {
		queries = append(queries, base+" "+id)
	}
	return append(queries, base)
}

// CandidateURL canonicalizes a hit URL. YouTube flat search results sometimes
// carry a bare video ID instead of a URL.
func CandidateURL(backend model.Backend, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if backend == model.BackendYouTube && !strings.Contains(raw, "://") {
		return "https://www.youtube.com/watch?v=" + raw
	}
	return raw
}

// DurationHint renders the signed difference between candidate and wanted
// durations, or "" when either is unknown.
func DurationHint(expected, actual int) string {
	if expected <= 0 || actual <= 0 {
		return ""
	}
	delta := actual - expected
	if delta >= 0 {
		return fmt.Sprintf("duration delta +%ds", delta)
	}
	return fmt.Sprintf("duration delta %ds", delta)
}
