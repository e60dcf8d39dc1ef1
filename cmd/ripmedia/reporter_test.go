package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"ripmedia/internal/model"
)

func TestFormatClock(t *testing.T) {
	tests := map[float64]string{
		0:      "00:00",
		4.6:    "00:05",
		185:    "03:05",
		3725.2: "1:02:05",
		-3:     "00:00",
	}
	for in, want := range tests {
		if got := formatClock(in); got != want {
			t.Errorf("formatClock(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatStep(t *testing.T) {
	rep := newConsoleReporter(&bytes.Buffer{}, modeNormal, newPalette(false), false, false, "MBps")
	tests := []struct {
		name string
		ev   model.StageEvent
		want string
	}{
		{"ok hides detail", model.StageEvent{Stage: "Metadata", OK: true, Detail: "spotify", DurationSeconds: 1.2}, "OK   Metadata 00:01"},
		{"failure shows detail", model.StageEvent{Stage: "Download (audio)", Detail: "HTTP 403"}, "FAIL Download (audio) HTTP 403"},
		{"skipped shows detail", model.StageEvent{Stage: "Tagging", OK: true, Detail: "skipped (webm)"}, "OK   Tagging skipped (webm)"},
		{"saved shows full path", model.StageEvent{Stage: model.StageSaved, OK: true, Detail: "/music/" + strings.Repeat("a", 80) + ".mp3"}, "OK   Saved /music/" + strings.Repeat("a", 80) + ".mp3"},
	}
	for _, tt := range tests {
		if got := rep.formatStep(tt.ev); got != tt.want {
			t.Errorf("%s: formatStep = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestReporterModes(t *testing.T) {
	item := model.Item{Provider: model.ProviderSoundCloud, Kind: model.KindTrack, Title: "Song", URL: "u"}
	step := model.StageEvent{Stage: model.StageSaved, OK: true, Detail: "/music/song.mp3"}
	fail := failureRecord{URL: "u", Stage: "Download", Message: "boom"}

	tests := []struct {
		mode    outputMode
		want    []string
		notWant []string
	}{
		{modeNormal, []string{"Song (SoundCloud · Track)", "OK   Saved /music/song.mp3", "Error: Download: boom (u)"}, nil},
		{modeQuiet, []string{"Error: Download: boom"}, []string{"Song", "Saved"}},
		{modePaths, nil, []string{"Song", "Saved", "Error"}},
		{modeJSON, nil, []string{"Song", "Saved", "Error"}},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		rep := newConsoleReporter(&buf, tt.mode, newPalette(false), true, false, "MBps")
		rep.begin(1, 1, "u")
		rep.Meta(item)
		rep.Step(step)
		rep.Progress(model.Progress{DownloadedBytes: 10, TotalBytes: 10, Status: "finished"})
		rep.failure(fail)
		rep.finish()
		out := buf.String()
		for _, w := range tt.want {
			requireContains(t, out, w)
		}
		for _, nw := range tt.notWant {
			if strings.Contains(out, nw) {
				t.Errorf("mode %d: output %q should not contain %q", tt.mode, out, nw)
			}
		}
		if tt.mode != modeNormal && strings.Contains(out, "\r") {
			t.Errorf("mode %d drew transient progress: %q", tt.mode, out)
		}
		if got := rep.current(); got.Title != "Song" {
			t.Errorf("mode %d: current() = %+v", tt.mode, got)
		}
	}
}

func TestProgressThrottle(t *testing.T) {
	var buf bytes.Buffer
	rep := newConsoleReporter(&buf, modeNormal, newPalette(false), true, false, "Mbps")
	now := time.Unix(100, 0)
	rep.now = func() time.Time { return now }

	rep.Progress(model.Progress{DownloadedBytes: 50, TotalBytes: 100, Speed: 1e6, ETASeconds: 5})
	first := buf.String()
	requireContains(t, first, " 50%")
	requireContains(t, first, "8.0 Mb/s")
	requireContains(t, first, "ETA 00:05")

	rep.Progress(model.Progress{DownloadedBytes: 60, TotalBytes: 100})
	if buf.String() != first {
		t.Fatal("expected redraw to be throttled")
	}
	now = now.Add(progressRedraw)
	rep.Progress(model.Progress{DownloadedBytes: 70, TotalBytes: 100})
	requireContains(t, buf.String(), " 70%")

	rep.finish()
	if !strings.HasSuffix(buf.String(), "\r\033[2K") {
		t.Fatalf("finish should clear the transient line, got %q", buf.String())
	}
}
