package preflight

import (
	"context"
	"strings"

	"ripmedia/internal/config"
	"ripmedia/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir)}
	for _, status := range CheckSystemDeps(ctx) {
		results = append(results, fromDependency(status))
	}
	results = append(results, CheckSpotifyCredentials(cfg.Spotify))
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// CheckSystemDeps evaluates the external binaries. Both the serve command and
// config validate use this so the requirement list lives in one place.
func CheckSystemDeps(ctx context.Context) []deps.Status {
	return deps.CheckBinaries(ctx, deps.DefaultRequirements())
}

// CheckSpotifyCredentials reports whether album and playlist links can be
// expanded. Missing credentials only limit Spotify to single tracks.
func CheckSpotifyCredentials(cfg config.Spotify) Result {
	const name = "Spotify API"
	id := strings.TrimSpace(cfg.ClientID)
	secret := strings.TrimSpace(cfg.ClientSecret)
	switch {
	case id != "" && secret != "":
		return Result{Name: name, Passed: true, Optional: true, Detail: "credentials configured"}
	case id != "" || secret != "":
		return Result{Name: name, Optional: true, Detail: "client_id and client_secret must both be set"}
	default:
		return Result{Name: name, Optional: true, Detail: "not configured (tracks only via oEmbed)"}
	}
}

func fromDependency(status deps.Status) Result {
	detail := status.Detail
	if status.Available {
		detail = status.Command
		if status.Version != "" {
			detail += " (" + status.Version + ")"
		}
	}
	return Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: detail}
}
