package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/paths"
	"ripmedia/internal/scoring"
	"ripmedia/internal/services"
	"ripmedia/internal/tagger"
)

// Options controls one run. Formats are already normalized: lowercase, no
// leading dot, empty for no override.
type Options struct {
	OutputDir      string
	Audio          bool
	AudioFormat    string
	VideoFormat    string
	Backend        model.Backend
	Interactive    bool
	CandidateLimit int
	// LowConfidence is the minimum best-candidate score accepted without a
	// chooser. Zero selects scoring.DefaultLowConfidence.
	LowConfidence float64
	Cookies       *model.Cookies
}

func (o Options) threshold() float64 {
	if o.LowConfidence <= 0 {
		return scoring.DefaultLowConfidence
	}
	return o.LowConfidence
}

// Deps are the collaborators an Engine drives.
type Deps struct {
	Metadata MetadataSource
	Resolver Resolver
	Fetcher  Fetcher
	Tagger   Tagger
}

// Engine runs items through the pipeline. It is safe for concurrent use when
// its collaborators are.
type Engine struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for step durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an Engine.
func New(deps Deps, opts ...Option) *Engine {
	e := &Engine{deps: deps, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "pipeline")
	return e
}

// Info fetches normalized metadata for url without downloading.
func (e *Engine) Info(ctx context.Context, url string) (model.Item, error) {
	return e.deps.Metadata.FetchMetadata(ctx, url)
}

// Run processes url and returns the saved paths. For collections with some
// failed entries the saved paths are returned alongside a
// *services.PartialSuccessError.
func (e *Engine) Run(ctx context.Context, url string, opts Options, rep Reporter, chooser Chooser) ([]string, error) {
	if rep == nil {
		rep = NopReporter{}
	}
	st := &stepper{engine: e, rep: rep, logger: logging.WithContext(ctx, e.logger)}

	start := e.now()
	item, err := e.deps.Metadata.FetchMetadata(ctx, url)
	if err != nil {
		stage := services.StageOf(err)
		if stage == "" {
			stage = model.StageMetadata
		}
		st.fail(stage, start, err)
		return nil, err
	}
	rep.Meta(item)
	st.ok(model.StageMetadata, fmt.Sprintf("%s · %s", item.Provider, item.Kind), start)

	if item.Kind.IsCollection() {
		return e.runCollection(ctx, item, opts, st, chooser)
	}
	path, err := e.runSingle(ctx, item, opts.OutputDir, opts, st, chooser, false)
	if err != nil {
		return nil, err
	}
	st.ok(model.StageSaved, path, e.now())
	return []string{path}, nil
}

func (e *Engine) runSingle(ctx context.Context, item model.Item, dir string, opts Options, st *stepper, chooser Chooser, inCollection bool) (string, error) {
	downloadURL := item.URL
	working := item

	if item.Provider == model.ProviderSpotify && item.Kind == model.KindTrack {
		selected, err := e.resolve(ctx, item, opts, st, chooser)
		if err != nil {
			return "", err
		}
		downloadURL = selected.URL
		working.Attribution = &model.Attribution{
			MetadataSource: model.ProviderSpotify,
			MediaSource:    selected.Backend.Provider(),
		}
	}

	wantAudio := WantsAudio(working, opts.Audio)
	override := opts.VideoFormat
	if wantAudio {
		override = opts.AudioFormat
	}
	ext := override
	if ext == "" {
		ext = DefaultExtension(working, wantAudio)
	}
	var plan paths.Plan
	if inCollection {
		plan = paths.CollectionEntryPlan(working, dir, ext, working.TrackNumber)
	} else {
		plan = paths.SingleItemPlan(working, dir, ext)
	}

	label := model.StageDownload + " (video)"
	if wantAudio {
		label = model.StageDownload + " (audio)"
	}
	name := displayName(working)
	st.started(model.StageDownloading, name)

	start := e.now()
	var ppStart time.Time
	result, err := e.deps.Fetcher.Fetch(ctx, model.FetchRequest{
		URL:        downloadURL,
		Audio:      wantAudio,
		Format:     ext,
		Recode:     !wantAudio && opts.VideoFormat != "",
		OutputPath: plan.FinalPath(),
		Cookies:    opts.Cookies,
		Thumbnail:  working.ArtworkURL == "",
	}, model.FetchHooks{
		OnProgress: st.rep.Progress,
		OnPostProcess: func(pp string) {
			ppStart = e.now()
			st.started(model.StagePostProcess, pp)
		},
	})
	if err != nil {
		st.fail(label, start, err)
		return "", err
	}
	end := e.now()
	if ppStart.IsZero() {
		st.okSpan(label, name, end.Sub(start))
	} else {
		st.okSpan(label, name, ppStart.Sub(start))
	}
	if result.PostProcessor != "" {
		var d time.Duration
		if !ppStart.IsZero() {
			d = end.Sub(ppStart)
		}
		st.okSpan(fmt.Sprintf("%s (%s)", model.StagePostProcess, result.PostProcessor), result.PostProcessor, d)
	}

	e.tag(ctx, result, working, st)
	return result.Path, nil
}

func (e *Engine) resolve(ctx context.Context, item model.Item, opts Options, st *stepper, chooser Chooser) (model.ResolvedSource, error) {
	start := e.now()
	backend := opts.Backend
	if backend == "" {
		backend = model.BackendYouTube
	}
	if e.deps.Resolver == nil {
		err := services.Errorf(services.ErrResolve, model.StageResolve, "No resolver configured.")
		st.fail(model.StageResolve, start, err)
		return model.ResolvedSource{}, err
	}
	candidates, err := e.deps.Resolver.ResolveCandidates(ctx, model.WantedFrom(item), backend, opts.CandidateLimit)
	if err == nil && len(candidates) == 0 {
		err = services.Errorf(services.ErrResolve, model.StageResolve, "No resolver candidates found.")
	}
	if err != nil {
		st.fail(model.StageResolve, start, err)
		return model.ResolvedSource{}, err
	}

	best := candidates[0]
	if scoring.IsLowConfidence(best.Confidence, opts.threshold()) && !opts.Interactive {
		err := services.Errorf(services.ErrResolve, model.StageResolve,
			"Low confidence match. Re-run with --interactive to choose a candidate, or try --resolver soundcloud.")
		st.fail(model.StageResolve, start, err)
		return model.ResolvedSource{}, err
	}

	selected := best
	if opts.Interactive {
		if chooser == nil {
			err := services.Errorf(services.ErrResolve, model.StageResolve,
				"Interactive mode is not available with --quiet/--print-path.")
			st.fail(model.StageResolve, start, err)
			return model.ResolvedSource{}, err
		}
		answer, err := chooser.Choose(ctx, candidates)
		if err == nil {
			selected, err = PickCandidate(candidates, answer)
		} else {
			err = services.Wrap(services.ErrResolve, model.StageResolve, "Interactive selection failed", err)
		}
		if err != nil {
			st.fail(model.StageResolve, start, err)
			return model.ResolvedSource{}, err
		}
	}

	detail := fmt.Sprintf("spotify → %s", selected.Backend)
	if selected.ConfidenceHint != "" {
		detail += " (" + selected.ConfidenceHint + ")"
	}
	st.ok(model.StageResolve, detail, start)
	st.logger.Debug("resolver candidate selected",
		logging.String(logging.FieldEventType, "resolve_selected"),
		logging.String(logging.FieldURL, selected.URL),
		logging.Float64("confidence", selected.Confidence),
		logging.String("title", selected.SelectedTitle),
	)
	return selected, nil
}

func (e *Engine) tag(ctx context.Context, result model.FetchResult, item model.Item, st *stepper) {
	if e.deps.Tagger == nil {
		return
	}
	start := e.now()
	var art *tagger.Artwork
	if item.ArtworkURL == "" && len(result.Artwork) > 0 {
		art = &tagger.Artwork{Data: result.Artwork, MIME: result.ArtworkMIME}
	}
	res, err := e.deps.Tagger.Tag(ctx, result.Path, item, art)
	if err != nil {
		st.logger.Info("tagging skipped",
			logging.String(logging.FieldEventType, "tagging_skipped"),
			logging.String("path", result.Path),
			logging.Error(err),
		)
		st.okSpan(model.StageTagging, "skipped", e.now().Sub(start))
		return
	}
	detail := ""
	if res.ArtworkEmbedded {
		detail = "artwork"
	}
	st.ok(model.StageTagging, detail, start)
}

// PickCandidate applies a raw 1-based answer to candidates. Empty selects
// the first.
func PickCandidate(candidates []model.ResolvedSource, answer string) (model.ResolvedSource, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "1"
	}
	idx, err := strconv.Atoi(answer)
	if err != nil {
		return model.ResolvedSource{}, services.Errorf(services.ErrResolve, model.StageResolve, "Invalid selection.")
	}
	if idx < 1 || idx > len(candidates) {
		return model.ResolvedSource{}, services.Errorf(services.ErrResolve, model.StageResolve, "Selection out of range.")
	}
	return candidates[idx-1], nil
}

// WantsAudio reports whether item should be fetched as audio: when the flag
// is set, for audio-first providers, and for tracks.
func WantsAudio(item model.Item, audioFlag bool) bool {
	if audioFlag {
		return true
	}
	if item.Provider == model.ProviderSoundCloud || item.Provider == model.ProviderSpotify {
		return true
	}
	return item.Kind == model.KindTrack
}

// DefaultExtension is m4a for audio and tracks, mp4 otherwise.
func DefaultExtension(item model.Item, audio bool) string {
	if audio || item.Kind == model.KindTrack {
		return "m4a"
	}
	return "mp4"
}

func displayName(item model.Item) string {
	switch {
	case item.Artist != "" && item.Title != "":
		return item.Artist + " - " + item.Title
	case item.Title != "":
		return item.Title
	default:
		return item.URL
	}
}

// stepper emits StageEvents and the matching log lines.
type stepper struct {
	engine *Engine
	rep    Reporter
	logger *slog.Logger
}

func (s *stepper) started(stage, detail string) {
	s.rep.StageStarted(stage, detail)
	s.logger.Debug("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String(logging.FieldStage, stage),
		logging.String("detail", detail),
	)
}

func (s *stepper) ok(stage, detail string, start time.Time) {
	s.okSpan(stage, detail, s.engine.now().Sub(start))
}

func (s *stepper) okSpan(stage, detail string, d time.Duration) {
	s.rep.Step(model.StageEvent{Stage: stage, OK: true, Detail: detail, DurationSeconds: d.Seconds()})
	s.logger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String(logging.FieldStage, stage),
		logging.String("detail", detail),
		logging.Duration("duration", d),
	)
}

func (s *stepper) fail(stage string, start time.Time, err error) {
	d := s.engine.now().Sub(start)
	s.rep.Step(model.StageEvent{Stage: stage, OK: false, Detail: err.Error(), DurationSeconds: d.Seconds()})
	level := slog.LevelWarn
	if errors.Is(err, services.ErrDetect) {
		level = slog.LevelInfo
	}
	s.logger.Log(context.Background(), level, "stage failed",
		logging.String(logging.FieldEventType, "stage_failed"),
		logging.String(logging.FieldStage, stage),
		logging.Error(err),
	)
}
