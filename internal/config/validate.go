package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateWebHost(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateNotifications()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateDownload() error {
	switch c.Download.Resolver {
	case "youtube", "soundcloud":
	default:
		return fmt.Errorf("download.resolver must be youtube or soundcloud, got %q", c.Download.Resolver)
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.LowConfidenceThreshold < 0 || c.Resolver.LowConfidenceThreshold > 1 {
		return errors.New("resolver.low_confidence_threshold must be between 0 and 1")
	}
	if c.Resolver.CandidateLimit > 50 {
		return errors.New("resolver.candidate_limit must be 50 or less")
	}
	return nil
}

func (c *Config) validateWebHost() error {
	if c.WebHost.Port < 0 || c.WebHost.Port > 65535 {
		return fmt.Errorf("webhost.port must be between 0 and 65535, got %d", c.WebHost.Port)
	}
	if c.WebHost.Parallel > 16 {
		return errors.New("webhost.parallel must be 16 or less")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return errors.New("notifications.ntfy_topic must be a full http(s) URL")
	}
	return nil
}
