package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteURLList writes a URL list file in dir the way users keep them: a
// comment header, one URL per line and a trailing blank line.
func WriteURLList(t testing.TB, dir string, urls ...string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("# queued downloads\n")
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return WriteFile(t, filepath.Join(dir, "urls.txt"), b.String())
}
