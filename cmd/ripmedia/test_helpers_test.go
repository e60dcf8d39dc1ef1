package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ripmedia/internal/config"
	"ripmedia/internal/model"
	"ripmedia/internal/pipeline"
	"ripmedia/internal/services"
)

type fakeResult struct {
	item  model.Item
	paths []string
	err   error
}

type engineCall struct {
	url     string
	opts    pipeline.Options
	chooser pipeline.Chooser
}

// fakeEngine replays scripted results per URL. Unknown URLs fail detection.
type fakeEngine struct {
	mu      sync.Mutex
	results map[string]fakeResult
	calls   []engineCall
}

func (f *fakeEngine) Run(_ context.Context, url string, opts pipeline.Options, rep pipeline.Reporter, ch pipeline.Chooser) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, engineCall{url: url, opts: opts, chooser: ch})
	res, ok := f.results[url]
	f.mu.Unlock()
	if !ok {
		return nil, services.Errorf(services.ErrDetect, model.StageDetected, "unsupported URL: %s", url)
	}
	if res.item.Title != "" {
		rep.Meta(res.item)
	}
	if res.err == nil {
		for _, p := range res.paths {
			rep.Step(model.StageEvent{Stage: model.StageSaved, OK: true, Detail: p})
		}
	}
	return res.paths, res.err
}

func (f *fakeEngine) Info(_ context.Context, url string) (model.Item, error) {
	res, ok := f.results[url]
	if !ok {
		return model.Item{}, services.Errorf(services.ErrDetect, model.StageDetected, "unsupported URL: %s", url)
	}
	return res.item, res.err
}

func (f *fakeEngine) recorded() []engineCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engineCall(nil), f.calls...)
}

type stubChooser struct{}

func (stubChooser) Choose(context.Context, []model.ResolvedSource) (string, error) { return "1", nil }

type cliEnv struct {
	t          *testing.T
	configPath string
	outputDir  string
	dataDir    string
	engine     *fakeEngine
	terminal   bool
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	env := &cliEnv{
		t:          t,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  filepath.Join(base, "out"),
		dataDir:    filepath.Join(base, "data"),
		engine:     &fakeEngine{results: map[string]fakeResult{}},
	}
	content := fmt.Sprintf("[paths]\noutput_dir = %q\nlog_dir = %q\ndata_dir = %q\n",
		env.outputDir, filepath.Join(base, "logs"), env.dataDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliEnv) run(args ...string) (string, string, int) {
	e.t.Helper()
	cc := newCommandContext()
	cc.newEngine = func(*config.Config, *slog.Logger) engine { return e.engine }
	cc.isTerminal = func(any) bool { return e.terminal }
	cc.newChooser = func(io.Reader, io.Writer) chooser { return stubChooser{} }

	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", e.configPath}, args...)
	code := execute(context.Background(), cc, full, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
