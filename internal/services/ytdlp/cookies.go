package ytdlp

import (
	"strings"
	"unicode"
)

// BrowserCookies selects cookies from an installed browser profile.
type BrowserCookies struct {
	Browser   string
	Profile   string
	Keyring   string
	Container string
}

// String renders the spec in yt-dlp's --cookies-from-browser syntax:
// BROWSER[+KEYRING][:PROFILE][::CONTAINER].
func (b BrowserCookies) String() string {
	if b.Browser == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(b.Browser)
	if b.Keyring != "" {
		sb.WriteString("+" + b.Keyring)
	}
	if b.Profile != "" {
		sb.WriteString(":" + b.Profile)
	}
	if b.Container != "" {
		sb.WriteString("::" + b.Container)
	}
	return sb.String()
}

// ParseBrowserCookies accepts "browser", "browser:profile",
// "browser:profile:container", "browser:profile:keyring:container", or the
// same fields separated by "|". A third field that looks like a filesystem
// path is treated as the profile directory. Empty input and "none", "null"
// or "false" disable browser cookies.
func ParseBrowserCookies(value string) (BrowserCookies, bool) {
	raw := strings.TrimSpace(value)
	switch strings.ToLower(raw) {
	case "", "none", "null", "false":
		return BrowserCookies{}, false
	}
	parts := splitCookieSpec(raw)
	switch len(parts) {
	case 0:
		return BrowserCookies{}, false
	case 1:
		return BrowserCookies{Browser: parts[0]}, true
	case 2:
		return BrowserCookies{Browser: parts[0], Profile: parts[1]}, true
	}

	browser, profile, tail := parts[0], parts[1], parts[2]
	if looksLikePath(tail) {
		dir := tail
		if !strings.HasSuffix(dir, profile) {
			dir = joinProfilePath(dir, profile)
		}
		return BrowserCookies{Browser: browser, Profile: dir}, true
	}
	if len(parts) == 3 {
		return BrowserCookies{Browser: browser, Profile: profile, Container: tail}, true
	}
	return BrowserCookies{Browser: browser, Profile: profile, Keyring: parts[2], Container: parts[3]}, true
}

func splitCookieSpec(raw string) []string {
	sep := ":"
	if strings.Contains(raw, "|") {
		sep = "|"
	}
	var parts []string
	for _, p := range strings.Split(raw, sep) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if sep == ":" {
		parts = repairDrivePath(parts)
	}
	return parts
}

// repairDrivePath rejoins a Windows drive letter split off by ":".
func repairDrivePath(parts []string) []string {
	if len(parts) < 3 {
		return parts
	}
	for i := 1; i < len(parts)-1; i++ {
		head, tail := parts[i], parts[i+1]
		if len(head) == 1 && unicode.IsLetter(rune(head[0])) &&
			(strings.HasPrefix(tail, `\`) || strings.HasPrefix(tail, "/")) {
			out := append([]string(nil), parts[:i]...)
			return append(out, strings.Join(parts[i:], ":"))
		}
	}
	return parts
}

func looksLikePath(value string) bool {
	if strings.ContainsAny(value, `\/`) {
		return true
	}
	return len(value) > 2 && value[1:3] == `:\` && unicode.IsLetter(rune(value[0]))
}

func joinProfilePath(base, leaf string) string {
	switch {
	case strings.HasSuffix(base, `\`) || strings.HasSuffix(base, "/"):
		return base + leaf
	case strings.Contains(base, `\`):
		return base + `\` + leaf
	default:
		return base + "/" + leaf
	}
}
