package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ripmedia/internal/config"
	"ripmedia/internal/history"
	"ripmedia/internal/logging"
)

type commandContext struct {
	configFlag string
	noColor    bool
	verbose    bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	// newEngine builds the download pipeline; tests substitute a fake.
	newEngine func(cfg *config.Config, logger *slog.Logger) engine
	// isTerminal reports whether f is an interactive terminal.
	isTerminal func(f any) bool
	// newChooser builds the interactive candidate picker.
	newChooser func(in io.Reader, out io.Writer) chooser
}

func newCommandContext() *commandContext {
	return &commandContext{
		newEngine:  buildEngine,
		isTerminal: fileIsTerminal,
		newChooser: newSurveyChooser,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

// fileLogger writes to log_dir only, keeping the terminal for the reporter.
// --verbose mirrors records to stderr.
func (c *commandContext) fileLogger(cfg *config.Config) (*slog.Logger, error) {
	outputs := []string{}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	}
	if c.verbose || len(outputs) == 0 {
		outputs = append(outputs, "stderr")
	}
	return logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: outputs,
	})
}

// openHistory returns nil with a warning when the store cannot be opened;
// downloads never fail because history is unavailable.
func (c *commandContext) openHistory(cfg *config.Config, logger *slog.Logger) *history.Store {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.String("path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
		)
		return nil
	}
	return store
}

func (c *commandContext) colorEnabled(cfg *config.Config, w io.Writer) bool {
	if c.noColor || (cfg != nil && cfg.UI.NoColor) {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return c.isTerminal(w)
}

func fileIsTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func describeConfigSource(path string, exists bool) string {
	if exists {
		return path
	}
	return fmt.Sprintf("%s (not found, defaults in use)", path)
}
