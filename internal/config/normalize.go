package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDownload(); err != nil {
		return err
	}
	c.normalizeResolver()
	c.normalizeWebHost()
	c.normalizeSpotify()
	c.normalizeNotifications()
	c.normalizeLogging()
	return c.normalizeUI()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir()
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownload() error {
	var err error
	if c.Download.AudioFormat, err = NormalizeFormatOverride(c.Download.AudioFormat); err != nil {
		return fmt.Errorf("download.audio_format: %w", err)
	}
	if c.Download.VideoFormat, err = NormalizeFormatOverride(c.Download.VideoFormat); err != nil {
		return fmt.Errorf("download.video_format: %w", err)
	}
	c.Download.Resolver = strings.ToLower(strings.TrimSpace(c.Download.Resolver))
	if c.Download.Resolver == "" {
		c.Download.Resolver = defaultResolver
	}
	c.Download.Cookies = noneToEmpty(c.Download.Cookies)
	if c.Download.Cookies != "" {
		if c.Download.Cookies, err = expandPath(c.Download.Cookies); err != nil {
			return fmt.Errorf("download.cookies: %w", err)
		}
	}
	c.Download.CookiesFromBrowser = noneToEmpty(c.Download.CookiesFromBrowser)
	return nil
}

func (c *Config) normalizeResolver() {
	if c.Resolver.CandidateLimit <= 0 {
		c.Resolver.CandidateLimit = defaultCandidateLimit
	}
	if c.Resolver.LowConfidenceThreshold == 0 {
		c.Resolver.LowConfidenceThreshold = defaultLowConfidence
	}
	if c.Resolver.DurationWindowSeconds <= 0 {
		c.Resolver.DurationWindowSeconds = defaultDurationWindow
	}
}

func (c *Config) normalizeWebHost() {
	c.WebHost.Bind = strings.TrimSpace(c.WebHost.Bind)
	if c.WebHost.Bind == "" {
		c.WebHost.Bind = defaultWebBind
	}
	if c.WebHost.Parallel <= 0 {
		c.WebHost.Parallel = defaultWebParallel
	}
}

func (c *Config) normalizeSpotify() {
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	if c.Spotify.ClientID == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_ID"); ok {
			c.Spotify.ClientID = strings.TrimSpace(value)
		}
	}
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	if c.Spotify.ClientSecret == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_SECRET"); ok {
			c.Spotify.ClientSecret = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeUI() error {
	if strings.TrimSpace(c.UI.SpeedUnit) == "" {
		c.UI.SpeedUnit = defaultSpeedUnit
		return nil
	}
	unit, err := NormalizeSpeedUnit(c.UI.SpeedUnit)
	if err != nil {
		return fmt.Errorf("ui.speed_unit: %w", err)
	}
	c.UI.SpeedUnit = unit
	return nil
}

var formatPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// NormalizeFormatOverride cleans a container/codec override. "false", "none",
// "null" and empty disable the override; a leading dot is dropped.
func NormalizeFormatOverride(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "none", "null", "false", "0", "no", "off":
		return "", nil
	case "true", "1", "yes", "on":
		return "", fmt.Errorf("invalid format %q", value)
	}
	v = strings.TrimLeft(v, ".")
	if v == "" {
		return "", nil
	}
	if !formatPattern.MatchString(v) {
		return "", fmt.Errorf("invalid format %q", value)
	}
	return v, nil
}

// NormalizeSpeedUnit maps the many spellings of megabytes and megabits per
// second onto SpeedUnitMBps or SpeedUnitMbps.
func NormalizeSpeedUnit(value string) (string, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	switch raw {
	case "":
		return "", fmt.Errorf("invalid speed unit %q, use mb/s or mbp/s", value)
	case "MBps", "MB/s":
		return SpeedUnitMBps, nil
	case "Mbps", "Mb/s":
		return SpeedUnitMbps, nil
	}
	v := strings.ToLower(raw)
	switch v {
	case "mb/s", "mbyte/s", "mbytes/s", "mbps_bytes":
		return SpeedUnitMBps, nil
	case "mbp/s", "mbps", "mbit/s", "mbits/s":
		return SpeedUnitMbps, nil
	}
	switch {
	case strings.Contains(v, "byte"):
		return SpeedUnitMBps, nil
	case strings.Contains(v, "bit"):
		return SpeedUnitMbps, nil
	case strings.HasSuffix(v, "mbs"):
		return SpeedUnitMBps, nil
	case strings.HasSuffix(v, "mbps"):
		return SpeedUnitMbps, nil
	}
	return "", fmt.Errorf("invalid speed unit %q, use mb/s or mbp/s", value)
}

func noneToEmpty(value string) string {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "none", "null", "false":
		return ""
	}
	return v
}
