package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	DataDir   string `toml:"data_dir"`
}

// Download contains defaults for the download command and the web host.
type Download struct {
	Audio              bool   `toml:"audio"`
	AudioFormat        string `toml:"audio_format"`
	VideoFormat        string `toml:"video_format"`
	Resolver           string `toml:"resolver"`
	Interactive        bool   `toml:"interactive"`
	Cookies            string `toml:"cookies"`
	CookiesFromBrowser string `toml:"cookies_from_browser"`
}

// Resolver contains candidate ranking settings.
type Resolver struct {
	CandidateLimit         int     `toml:"candidate_limit"`
	LowConfidenceThreshold float64 `toml:"low_confidence_threshold"`
	DurationWindowSeconds  float64 `toml:"duration_window_seconds"`
}

// WebHost contains configuration for the local web UI server.
type WebHost struct {
	Bind        string `toml:"bind"`
	Port        int    `toml:"port"`
	Parallel    int    `toml:"parallel"`
	OpenBrowser bool   `toml:"open_browser"`
}

// Spotify contains Web API client credentials.
type Spotify struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Batch          bool   `toml:"batch"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// UI contains terminal and web display preferences.
type UI struct {
	SpeedUnit string `toml:"speed_unit"`
	NoColor   bool   `toml:"no_color"`
}

// Config encapsulates all configuration values for ripmedia.
//
// Configuration sections by subsystem:
//   - Paths: output, log and data directories
//   - Download: audio/video defaults, resolver backend, cookies
//   - Resolver: candidate limit and confidence thresholds
//   - WebHost: local web UI bind address and worker count
//   - Spotify: Web API credentials for album/playlist expansion
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//   - UI: speed unit and color preferences
type Config struct {
	Paths         Paths         `toml:"paths"`
	Download      Download      `toml:"download"`
	Resolver      Resolver      `toml:"resolver"`
	WebHost       WebHost       `toml:"webhost"`
	Spotify       Spotify       `toml:"spotify"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	UI            UI            `toml:"ui"`
}

const defaultConfigPath = "~/.config/ripmedia/config.toml"

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("ripmedia.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output, log and data directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.DataDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the sqlite database path used for download history.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LockPath returns the lock file guarding a single web host instance.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "webhost.lock")
}

// ListenAddress returns host:port for the web host.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.WebHost.Bind, c.WebHost.Port)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
