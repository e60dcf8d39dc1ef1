package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ripmedia/internal/config"
	"ripmedia/internal/history"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/pipeline"
	"ripmedia/internal/services"
	"ripmedia/internal/urls"
)

const maxListedFailures = 20

type downloadFlags struct {
	audio              bool
	mp3                bool
	audioFormat        string
	videoFormat        string
	outputDir          string
	resolver           string
	interactive        bool
	cookies            string
	cookiesFromBrowser string
	quiet              bool
	printPath          bool
	jsonOut            bool
	speedUnit          string
}

// downloadRun is the effective configuration of one invocation after flags
// are layered over the config file.
type downloadRun struct {
	cfg       config.Config
	opts      pipeline.Options
	mode      outputMode
	speedUnit string
}

type downloadReport struct {
	BatchID  string          `json:"batch_id"`
	Saved    []string        `json:"saved"`
	Failures []failureRecord `json:"failures"`
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var flags downloadFlags

	cmd := &cobra.Command{
		Use:     "download <url|file>...",
		Aliases: []string{"dl"},
		Short:   "Download one or more URLs (files are read as URL lists)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError("at least one URL or URL file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			run, err := flags.apply(cmd, *cfg)
			if err != nil {
				return err
			}
			list, err := urls.ExpandArgs(args)
			if err != nil {
				return usageError("%v", err)
			}
			if len(list) == 0 {
				return usageError("no URLs to download")
			}
			return runDownloads(cmd, ctx, run, list)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.audio, "audio", false, "Extract audio only")
	f.BoolVar(&flags.mp3, "mp3", false, "Shorthand for --audio-format mp3")
	f.StringVar(&flags.audioFormat, "audio-format", "", "Override audio output format (e.g. mp3, flac)")
	f.StringVar(&flags.videoFormat, "video-format", "", "Override video output format (e.g. mp4, mkv)")
	f.StringVarP(&flags.outputDir, "output-dir", "o", "", "Base output directory")
	f.StringVar(&flags.resolver, "resolver", "", "Search backend for Spotify tracks: youtube or soundcloud")
	f.BoolVar(&flags.interactive, "interactive", false, "Pick the resolver candidate yourself")
	f.StringVar(&flags.cookies, "cookies", "", "Netscape cookies.txt file passed to yt-dlp")
	f.StringVar(&flags.cookiesFromBrowser, "cookies-from-browser", "", "Browser cookie spec, e.g. firefox or chrome:Profile 1")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Only print errors")
	f.BoolVar(&flags.printPath, "print-path", false, "Print only the saved path(s)")
	f.BoolVar(&flags.jsonOut, "json", false, "Print a JSON report of saved paths and failures")
	f.StringVar(&flags.speedUnit, "speed-unit", "", "Speed unit: mb/s (bytes) or mbp/s (bits)")
	return cmd
}

func (f downloadFlags) apply(cmd *cobra.Command, cfg config.Config) (downloadRun, error) {
	changed := cmd.Flags().Changed
	var err error

	if changed("audio") {
		cfg.Download.Audio = f.audio
	}
	if changed("audio-format") {
		if cfg.Download.AudioFormat, err = config.NormalizeFormatOverride(f.audioFormat); err != nil {
			return downloadRun{}, usageError("--audio-format: %v", err)
		}
	}
	if f.mp3 {
		if changed("audio-format") && cfg.Download.AudioFormat != "" && cfg.Download.AudioFormat != "mp3" {
			return downloadRun{}, usageError("conflicting audio format: use --audio-format mp3 or remove --mp3")
		}
		cfg.Download.AudioFormat = "mp3"
	}
	if changed("video-format") {
		if cfg.Download.VideoFormat, err = config.NormalizeFormatOverride(f.videoFormat); err != nil {
			return downloadRun{}, usageError("--video-format: %v", err)
		}
	}
	if changed("output-dir") {
		dir, err := config.ExpandPath(f.outputDir)
		if err != nil {
			return downloadRun{}, usageError("--output-dir: %v", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return downloadRun{}, fmt.Errorf("create output directory %q: %w", dir, err)
		}
		cfg.Paths.OutputDir = dir
	}
	if changed("resolver") {
		cfg.Download.Resolver = f.resolver
	}
	if changed("interactive") {
		cfg.Download.Interactive = f.interactive
	}
	if changed("cookies") {
		path, err := config.ExpandPath(f.cookies)
		if err != nil {
			return downloadRun{}, usageError("--cookies: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			return downloadRun{}, usageError("--cookies: %v", err)
		}
		cfg.Download.Cookies = path
	}
	if changed("cookies-from-browser") {
		cfg.Download.CookiesFromBrowser = f.cookiesFromBrowser
	}

	speedUnit := cfg.UI.SpeedUnit
	if changed("speed-unit") {
		if speedUnit, err = config.NormalizeSpeedUnit(f.speedUnit); err != nil {
			return downloadRun{}, usageError("--speed-unit: %v", err)
		}
	}

	if f.jsonOut && f.printPath {
		return downloadRun{}, usageError("--json and --print-path cannot be combined")
	}
	mode := modeNormal
	switch {
	case f.jsonOut:
		mode = modeJSON
	case f.printPath:
		mode = modePaths
	case f.quiet:
		mode = modeQuiet
	}

	opts, err := pipelineOptions(&cfg)
	if err != nil {
		return downloadRun{}, usageError("--resolver: %v", err)
	}
	return downloadRun{cfg: cfg, opts: opts, mode: mode, speedUnit: speedUnit}, nil
}

func runDownloads(cmd *cobra.Command, ctx *commandContext, run downloadRun, list []string) error {
	logger, err := ctx.fileLogger(&run.cfg)
	if err != nil {
		return err
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	pal := newPalette(ctx.colorEnabled(&run.cfg, errOut))
	rep := newConsoleReporter(errOut, run.mode, pal, ctx.isTerminal(errOut), ctx.verbose, run.speedUnit)

	var pick pipeline.Chooser
	if run.opts.Interactive && run.mode == modeNormal && ctx.isTerminal(cmd.InOrStdin()) && ctx.isTerminal(errOut) {
		pick = ctx.newChooser(cmd.InOrStdin(), errOut)
	}

	eng := ctx.newEngine(&run.cfg, logger)
	store := ctx.openHistory(&run.cfg, logger)
	if store != nil {
		defer store.Close()
	}

	batch := history.Batch{ID: uuid.NewString(), Source: "cli", Total: len(list), StartedAt: time.Now().UTC()}
	runCtx := services.WithBatchID(cmd.Context(), batch.ID)
	logger.Info("cli batch started",
		logging.String(logging.FieldEventType, "batch_started"),
		logging.String(logging.FieldCorrelationID, batch.ID),
		logging.Int("items", len(list)),
	)

	saved := []string{}
	failures := []failureRecord{}
	for i, url := range list {
		if runCtx.Err() != nil {
			break
		}
		rep.begin(i+1, len(list), url)
		started := time.Now().UTC()
		paths, runErr := eng.Run(runCtx, url, run.opts, rep, pick)

		item := rep.current()
		entry := history.Entry{
			BatchID:   batch.ID,
			URL:       url,
			Title:     item.Title,
			Provider:  item.Provider,
			Kind:      item.Kind,
			Status:    model.StatusDone,
			Paths:     paths,
			StartedAt: started,
		}
		var partial *services.PartialSuccessError
		switch {
		case runErr == nil:
			saved = append(saved, paths...)
		case errors.As(runErr, &partial):
			saved = append(saved, partial.Saved...)
			for _, pf := range partial.Failures {
				rec := failureFromPartial(pf)
				failures = append(failures, rec)
				rep.failure(rec)
			}
			if len(partial.Failures) > 0 {
				rep.hint(hintFor(partial.Failures[0].Stage, partial.Failures[0].Message))
			}
			entry.Status, entry.Stage, entry.Error, entry.Paths = model.StatusError, partial.Stage, partial.Message, partial.Saved
		default:
			rec := failureFromError(url, runErr)
			failures = append(failures, rec)
			rep.failure(rec)
			rep.hint(hintFor(rec.Stage, rec.Message))
			entry.Status, entry.Stage, entry.Error = model.StatusError, rec.Stage, rec.Message
		}
		entry.FinishedAt = time.Now().UTC()
		if entry.Status == model.StatusDone {
			batch.Saved++
		} else {
			batch.Failed++
		}
		recordEntry(store, logger, entry)
	}
	rep.finish()

	batch.FinishedAt = time.Now().UTC()
	if store != nil {
		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(runCtx), 5*time.Second)
		if err := store.RecordBatch(persistCtx, batch); err != nil {
			logger.Warn("record batch failed", logging.Error(err))
		}
		cancel()
	}
	logger.Info("cli batch completed",
		logging.String(logging.FieldEventType, "batch_completed"),
		logging.String(logging.FieldCorrelationID, batch.ID),
		logging.Int("saved", len(saved)),
		logging.Int("failed", len(failures)),
	)

	switch run.mode {
	case modePaths:
		for _, p := range saved {
			fmt.Fprintln(out, p)
		}
	case modeJSON:
		if err := writeJSON(out, downloadReport{BatchID: batch.ID, Saved: saved, Failures: failures}); err != nil {
			return err
		}
	case modeNormal:
		renderDownloadSummary(errOut, pal, len(saved), failures)
	}

	if err := runCtx.Err(); err != nil {
		return err
	}
	if code := batchExitCode(len(saved), failures); code != exitOK {
		return &exitError{code: code}
	}
	return nil
}

func recordEntry(store *history.Store, logger *slog.Logger, entry history.Entry) {
	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := store.Record(ctx, entry); err != nil {
		logger.Warn("record history failed", logging.String(logging.FieldURL, entry.URL), logging.Error(err))
	}
}

func renderDownloadSummary(w io.Writer, pal palette, saved int, failures []failureRecord) {
	if len(failures) == 0 {
		fmt.Fprintln(w, pal.ok.Sprintf("Download complete: %d saved.", saved))
		return
	}
	fmt.Fprintf(w, "%s saved=%d failed=%d\n", pal.bold.Sprint("Summary:"), saved, len(failures))
	listed := failures
	if len(listed) > maxListedFailures {
		listed = listed[:maxListedFailures]
	}
	rows := make([][]string, 0, len(listed))
	for _, f := range listed {
		rows = append(rows, []string{orDash(f.Stage), f.Message, f.URL})
	}
	fmt.Fprintln(w, renderTable([]column{
		{Title: "Stage"},
		{Title: "Error", MaxWidth: 60},
		{Title: "URL", MaxWidth: 60},
	}, rows))
	if extra := len(failures) - len(listed); extra > 0 {
		fmt.Fprintln(w, pal.dim.Sprintf("...and %d more failures", extra))
	}
}
