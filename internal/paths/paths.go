package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"ripmedia/internal/model"
)

const (
	unknownSegment  = "unknown"
	maxUniqueSuffix = 10000
)

var (
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	controlChars = regexp.MustCompile(`[\x00-\x1f]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// SanitizeSegment makes value safe as a single path segment on every major
// filesystem. Control and reserved characters become "_", trailing dots and
// spaces are dropped, and an empty result becomes "unknown".
func SanitizeSegment(value string) string {
	value = norm.NFC.String(strings.TrimSpace(value))
	value = controlChars.ReplaceAllString(value, "_")
	value = illegalChars.ReplaceAllString(value, "_")
	value = strings.TrimRight(value, " .")
	value = strings.TrimSpace(whitespace.ReplaceAllString(value, " "))
	if value == "" {
		return unknownSegment
	}
	return value
}

// Plan is a directory, file stem and extension that together name an output file.
type Plan struct {
	Directory string
	Stem      string
	Extension string
}

// FinalPath joins the plan into a path.
func (p Plan) FinalPath() string {
	return filepath.Join(p.Directory, p.Stem+p.Extension)
}

// SingleItemPlan names a standalone download: "Artist - Title" for tracks
// with both fields, otherwise the title.
func SingleItemPlan(item model.Item, outputDir, extension string) Plan {
	var name string
	if item.Kind == model.KindTrack && strings.TrimSpace(item.Artist) != "" && strings.TrimSpace(item.Title) != "" {
		name = item.Artist + " - " + item.Title
	} else {
		name = item.Title
	}
	return Plan{Directory: outputDir, Stem: SanitizeSegment(name), Extension: dotted(extension)}
}

// CollectionDirectory returns the folder collection entries are saved into.
func CollectionDirectory(item model.Item, outputDir string) string {
	switch item.Kind {
	case model.KindAlbum:
		folder := item.Album
		if strings.TrimSpace(folder) == "" {
			folder = item.Title
		}
		if strings.TrimSpace(folder) == "" {
			return filepath.Join(outputDir, "unknown album")
		}
		return filepath.Join(outputDir, SanitizeSegment(folder))
	case model.KindPlaylist:
		if strings.TrimSpace(item.Title) == "" {
			return filepath.Join(outputDir, "unknown playlist")
		}
		return filepath.Join(outputDir, SanitizeSegment(item.Title))
	default:
		return outputDir
	}
}

// CollectionEntryPlan names one entry of a collection: "NN - Title" when the
// track number is known.
func CollectionEntryPlan(item model.Item, directory, extension string, trackNumber int) Plan {
	title := unknownSegment
	if strings.TrimSpace(item.Title) != "" {
		title = SanitizeSegment(item.Title)
	}
	prefix := ""
	if trackNumber > 0 {
		prefix = fmt.Sprintf("%02d - ", trackNumber)
	}
	return Plan{Directory: directory, Stem: SanitizeSegment(prefix + title), Extension: dotted(extension)}
}

// EnsureUnique returns path if nothing exists there, otherwise the first free
// "stem (n).ext" sibling.
func EnsureUnique(path string) (string, error) {
	if !exists(path) {
		return path, nil
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	for i := 1; i < maxUniqueSuffix; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find available filename for %s", path)
}

// Within reports whether target resolves to a location inside root.
func Within(root, target string) bool {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	if resolved, err := filepath.EvalSymlinks(rootAbs); err == nil {
		rootAbs = resolved
	}
	if resolved, err := filepath.EvalSymlinks(targetAbs); err == nil {
		targetAbs = resolved
	}
	rel, err := filepath.Rel(rootAbs, targetAbs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func dotted(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
