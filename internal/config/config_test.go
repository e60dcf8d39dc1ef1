package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ripmedia/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "ripmedia", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".local", "share", "ripmedia", "logs"); cfg.Paths.LogDir != want {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, want)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Spotify.ClientID != "env-id" || cfg.Spotify.ClientSecret != "env-secret" {
		t.Fatalf("expected spotify credentials from env, got %+v", cfg.Spotify)
	}
	if cfg.Resolver.LowConfidenceThreshold != 0.6 || cfg.Resolver.DurationWindowSeconds != 30 || cfg.Resolver.CandidateLimit != 5 {
		t.Fatalf("unexpected resolver defaults %+v", cfg.Resolver)
	}
	if cfg.WebHost.Parallel != 2 {
		t.Fatalf("expected parallel 2, got %d", cfg.WebHost.Parallel)
	}
	if cfg.UI.SpeedUnit != config.SpeedUnitMBps {
		t.Fatalf("unexpected speed unit %q", cfg.UI.SpeedUnit)
	}
	if cfg.HistoryPath() != filepath.Join(tempHome, ".local", "share", "ripmedia", "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SPOTIFY_CLIENT_ID", "")

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"output_dir": "~/music",
		},
		"download": map[string]any{
			"audio_format":         ".MP3",
			"video_format":         "none",
			"resolver":             "SoundCloud",
			"cookies":              "~/cookies.txt",
			"cookies_from_browser": "null",
		},
		"webhost": map[string]any{
			"port":     9000,
			"parallel": 4,
		},
		"ui": map[string]any{
			"speed_unit": "mbit/s",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != cfgPath {
		t.Fatalf("expected config file to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "music") {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Download.AudioFormat != "mp3" || cfg.Download.VideoFormat != "" {
		t.Fatalf("unexpected format overrides %+v", cfg.Download)
	}
	if cfg.Download.Resolver != "soundcloud" {
		t.Fatalf("unexpected resolver %q", cfg.Download.Resolver)
	}
	if cfg.Download.Cookies != filepath.Join(tempHome, "cookies.txt") || cfg.Download.CookiesFromBrowser != "" {
		t.Fatalf("unexpected cookie settings %+v", cfg.Download)
	}
	if cfg.ListenAddress() != "127.0.0.1:9000" || cfg.WebHost.Parallel != 4 {
		t.Fatalf("unexpected webhost %+v", cfg.WebHost)
	}
	if cfg.UI.SpeedUnit != config.SpeedUnitMbps {
		t.Fatalf("unexpected speed unit %q", cfg.UI.SpeedUnit)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cases := map[string]string{
		"resolver":  "[download]\nresolver = \"bandcamp\"\n",
		"format":    "[download]\naudio_format = \"mp-3\"\n",
		"threshold": "[resolver]\nlow_confidence_threshold = 1.5\n",
		"port":      "[webhost]\nport = 70000\n",
		"log":       "[logging]\nformat = \"xml\"\n",
		"ntfy":      "[notifications]\nntfy_topic = \"my-topic\"\n",
		"speed":     "[ui]\nspeed_unit = \"furlongs\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestNormalizeFormatOverride(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"false", "", false},
		{"None", "", false},
		{"null", "", false},
		{".m4a", "m4a", false},
		{"MP4", "mp4", false},
		{"true", "", true},
		{"mp 3", "", true},
	}
	for _, tc := range tests {
		got, err := config.NormalizeFormatOverride(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("NormalizeFormatOverride(%q) err=%v wantErr=%v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("NormalizeFormatOverride(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSpeedUnit(t *testing.T) {
	for in, want := range map[string]string{
		"MB/s": config.SpeedUnitMBps, "mb/s": config.SpeedUnitMBps, "megabytes": config.SpeedUnitMBps,
		"Mb/s": config.SpeedUnitMbps, "mbp/s": config.SpeedUnitMbps, "Mbps": config.SpeedUnitMbps, "megabits": config.SpeedUnitMbps,
	} {
		got, err := config.NormalizeSpeedUnit(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeSpeedUnit(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[resolver]") {
		t.Fatal("sample config missing resolver section")
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, cfg.Paths.DataDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s", dir)
		}
	}
}
