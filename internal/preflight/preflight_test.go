package preflight

import (
	"context"
	"path/filepath"
	"testing"

	"ripmedia/internal/config"
	"ripmedia/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_Failures(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	testsupport.WriteFile(t, file, "x")
	for name, path := range map[string]string{
		"missing": filepath.Join(t.TempDir(), "nope"),
		"file":    file,
		"unset":   "",
	} {
		t.Run(name, func(t *testing.T) {
			result := CheckDirectoryAccess("test", path)
			if result.Passed || result.Detail == "" {
				t.Fatalf("expected failure with detail, got %+v", result)
			}
		})
	}
}

func TestCheckSpotifyCredentials(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.Spotify
		passed bool
	}{
		{"both", config.Spotify{ClientID: "id", ClientSecret: "secret"}, true},
		{"half", config.Spotify{ClientID: "id"}, false},
		{"none", config.Spotify{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckSpotifyCredentials(tt.cfg)
			if got.Passed != tt.passed || !got.Optional {
				t.Fatalf("unexpected result %+v", got)
			}
		})
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("yt-dlp", "ffmpeg"))
	results := RunAll(context.Background(), cfg)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	want := []string{"Output directory", "yt-dlp", "FFmpeg", "FFprobe", "Spotify API"}
	if len(names) != len(want) {
		t.Fatalf("checks = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("checks = %v, want %v", names, want)
		}
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected only optional failures, got %+v", failed)
	}
	if results[4].Passed {
		t.Fatalf("expected spotify check to fail without credentials, got %+v", results[4])
	}

	withCreds := testsupport.NewConfig(t, testsupport.WithSpotifyCredentials("id", "secret"))
	if got := RunAll(context.Background(), withCreds); !got[len(got)-1].Passed {
		t.Fatalf("expected spotify check to pass, got %+v", got[len(got)-1])
	}

	t.Setenv("PATH", t.TempDir())
	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 2 || failed[0].Name != "yt-dlp" || failed[1].Name != "FFmpeg" {
		t.Fatalf("expected yt-dlp and ffmpeg failures, got %+v", failed)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if got := RunAll(context.Background(), nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
