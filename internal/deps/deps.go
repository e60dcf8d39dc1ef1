package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// versionTimeout bounds each --version probe.
const versionTimeout = 5 * time.Second

// Requirement is an external binary ripmedia shells out to. VersionArgs, when
// set, are passed to the binary to read its version.
type Requirement struct {
	Name        string
	Command     string
	VersionArgs []string
	Optional    bool
}

// Status is the outcome of locating one Requirement.
type Status struct {
	Name      string
	Command   string
	Optional  bool
	Available bool
	// Version is the first line the binary printed for VersionArgs, if any.
	Version string
	Detail  string
}

// DefaultRequirements lists the binaries the download path depends on:
// yt-dlp for metadata, search and fetch, ffmpeg for extraction and merges.
func DefaultRequirements() []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: "yt-dlp", VersionArgs: []string{"--version"}},
		{Name: "FFmpeg", Command: "ffmpeg", VersionArgs: []string{"-version"}},
		{Name: "FFprobe", Command: "ffprobe", Optional: true},
	}
}

// CheckBinaries resolves every requirement on PATH and probes versions of
// the ones found.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(ctx, req))
	}
	return results
}

func check(ctx context.Context, req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{Name: req.Name, Command: cmd, Optional: req.Optional}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Command = resolved
	status.Available = true
	if len(req.VersionArgs) > 0 {
		status.Version = probeVersion(ctx, resolved, req.VersionArgs)
	}
	return status
}

// probeVersion returns the first non-empty output line, or "" when the probe
// fails. A binary that cannot report its version still counts as available.
func probeVersion(ctx context.Context, binary string, args []string) string {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		return ""
	}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}
