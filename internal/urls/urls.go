package urls

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"ripmedia/internal/model"
)

var providerHosts = map[string]model.Provider{
	"youtu.be":                 model.ProviderYouTube,
	"youtube.com":              model.ProviderYouTube,
	"www.youtube.com":          model.ProviderYouTube,
	"m.youtube.com":            model.ProviderYouTube,
	"music.youtube.com":        model.ProviderYouTube,
	"youtube-nocookie.com":     model.ProviderYouTube,
	"www.youtube-nocookie.com": model.ProviderYouTube,
	"soundcloud.com":           model.ProviderSoundCloud,
	"www.soundcloud.com":       model.ProviderSoundCloud,
	"m.soundcloud.com":         model.ProviderSoundCloud,
	"on.soundcloud.com":        model.ProviderSoundCloud,
	"open.spotify.com":         model.ProviderSpotify,
	"twitter.com":              model.ProviderTwitter,
	"www.twitter.com":          model.ProviderTwitter,
	"mobile.twitter.com":       model.ProviderTwitter,
	"x.com":                    model.ProviderTwitter,
	"www.x.com":                model.ProviderTwitter,
	"mobile.x.com":             model.ProviderTwitter,
	"vxtwitter.com":            model.ProviderTwitter,
	"www.vxtwitter.com":        model.ProviderTwitter,
	"fxtwitter.com":            model.ProviderTwitter,
	"www.fxtwitter.com":        model.ProviderTwitter,
}

// DetectProvider classifies rawURL by host.
func DetectProvider(rawURL string) model.Provider {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return model.ProviderUnknown
	}
	if p, ok := providerHosts[strings.ToLower(u.Hostname())]; ok {
		return p
	}
	return model.ProviderUnknown
}

// ExpandArgs replaces every argument that names an existing regular file
// with the URLs listed in it, one per line. Blank lines and lines starting
// with "#" are skipped. Other arguments pass through unchanged.
func ExpandArgs(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.Mode().IsRegular() {
			out = append(out, arg)
			continue
		}
		listed, err := readURLFile(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, listed...)
	}
	return out, nil
}

// SplitLines parses a newline separated URL list with the same rules as URL
// files.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url list %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list %s: %w", path, err)
	}
	return out, nil
}
