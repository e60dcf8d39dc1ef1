package main

import (
	"context"
	"log/slog"

	"ripmedia/internal/config"
	"ripmedia/internal/model"
	"ripmedia/internal/pipeline"
	"ripmedia/internal/resolver"
	"ripmedia/internal/scoring"
	"ripmedia/internal/services/spotify"
	"ripmedia/internal/services/ytdlp"
	"ripmedia/internal/tagger"
)

// engine is the pipeline surface the CLI drives. *pipeline.Engine satisfies it.
type engine interface {
	Run(ctx context.Context, url string, opts pipeline.Options, rep pipeline.Reporter, chooser pipeline.Chooser) ([]string, error)
	Info(ctx context.Context, url string) (model.Item, error)
}

// buildEngine wires the production collaborators: yt-dlp for extraction,
// search and download, Spotify for catalog metadata, and the file tagger.
func buildEngine(cfg *config.Config, logger *slog.Logger) engine {
	cookies := model.Cookies{File: cfg.Download.Cookies, FromBrowser: cfg.Download.CookiesFromBrowser}
	yt := ytdlp.New(ytdlp.WithCookies(cookies), ytdlp.WithLogger(logger))
	sp := spotify.New(
		spotify.WithCredentials(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret),
		spotify.WithLogger(logger),
	)
	res := resolver.New(yt,
		resolver.WithScorer(scoring.New(cfg.Resolver.DurationWindowSeconds)),
		resolver.WithLogger(logger),
	)
	return pipeline.New(pipeline.Deps{
		Metadata: pipeline.Router{Spotify: sp, Extractor: yt},
		Resolver: res,
		Fetcher:  yt,
		Tagger:   tagger.New(tagger.WithLogger(logger)),
	}, pipeline.WithLogger(logger))
}

// pipelineOptions derives per-run options from a normalized config.
func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	backend, err := model.ParseBackend(cfg.Download.Resolver)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		OutputDir:      cfg.Paths.OutputDir,
		Audio:          cfg.Download.Audio || cfg.Download.AudioFormat != "",
		AudioFormat:    cfg.Download.AudioFormat,
		VideoFormat:    cfg.Download.VideoFormat,
		Backend:        backend,
		Interactive:    cfg.Download.Interactive,
		CandidateLimit: cfg.Resolver.CandidateLimit,
		LowConfidence:  cfg.Resolver.LowConfidenceThreshold,
	}, nil
}
