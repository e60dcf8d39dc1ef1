package ytdlp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"ripmedia/internal/logging"
	"ripmedia/internal/model"
)

// runCommand executes a prepared yt-dlp command. Tests replace it.
var runCommand = func(ctx context.Context, cmd *ytdlp.Command, args ...string) (*ytdlp.Result, error) {
	return cmd.Run(ctx, args...)
}

const defaultProgressInterval = 200 * time.Millisecond

// Option configures a Client.
type Option func(*Client)

// WithCookies sets the cookie source used by every command.
func WithCookies(c model.Cookies) Option {
	return func(cl *Client) { cl.cookies = c }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// WithProgressInterval overrides how often download progress is sampled.
func WithProgressInterval(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.progressInterval = d
		}
	}
}

// Client runs yt-dlp for metadata, search, and downloads.
type Client struct {
	cookies          model.Cookies
	logger           *slog.Logger
	progressInterval time.Duration
}

// New constructs a Client.
func New(opts ...Option) *Client {
	c := &Client{logger: logging.NewNop(), progressInterval: defaultProgressInterval}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "ytdlp")
	return c
}

func (c *Client) command(override *model.Cookies) *ytdlp.Command {
	cookies := c.cookies
	if override != nil && !override.IsZero() {
		cookies = *override
	}
	cmd := ytdlp.New().NoWarnings()
	if file := strings.TrimSpace(cookies.File); file != "" {
		return cmd.Cookies(file)
	}
	if spec, ok := ParseBrowserCookies(cookies.FromBrowser); ok {
		cmd = cmd.CookiesFromBrowser(spec.String())
	}
	return cmd
}

// cleanError trims yt-dlp's "ERROR:" prefix and stderr noise down to the
// first meaningful line.
func cleanError(err error, res *ytdlp.Result) string {
	if res != nil {
		for _, line := range strings.Split(res.Stderr, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "ERROR:") {
				return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
			}
		}
	}
	if err == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(err.Error(), "ERROR:"))
}
