package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"ripmedia/internal/model"
	"ripmedia/internal/textutil"
)

type outputMode int

const (
	modeNormal outputMode = iota
	modeQuiet
	modePaths
	modeJSON
)

const (
	progressRedraw = 100 * time.Millisecond
	maxLabelWidth  = 48
	maxDetailWidth = 60
)

type palette struct {
	ok    *color.Color
	fail  *color.Color
	stage *color.Color
	dim   *color.Color
	bold  *color.Color
	warn  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		ok:    color.New(color.FgGreen, color.Bold),
		fail:  color.New(color.FgRed, color.Bold),
		stage: color.New(color.FgCyan, color.Bold),
		dim:   color.New(color.Faint),
		bold:  color.New(color.Bold),
		warn:  color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.ok, p.fail, p.stage, p.dim, p.bold, p.warn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// consoleReporter renders pipeline progress for one-shot downloads. It
// implements pipeline.Reporter. Progress is redrawn in place only when live
// is set (a terminal); otherwise only step lines are written.
type consoleReporter struct {
	out       io.Writer
	mode      outputMode
	verbose   bool
	live      bool
	speedUnit string
	pal       palette
	now       func() time.Time

	mu        sync.Mutex
	item      model.Item
	transient bool
	lastDraw  time.Time
}

func newConsoleReporter(out io.Writer, mode outputMode, pal palette, live, verbose bool, speedUnit string) *consoleReporter {
	return &consoleReporter{
		out:       out,
		mode:      mode,
		verbose:   verbose,
		live:      live && mode == modeNormal,
		speedUnit: speedUnit,
		pal:       pal,
		now:       time.Now,
	}
}

// begin resets per-URL state and announces the URL in multi-URL batches.
func (r *consoleReporter) begin(index, total int, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.item = model.Item{URL: url}
	if r.mode != modeNormal || total <= 1 {
		return
	}
	r.clearLocked()
	fmt.Fprintf(r.out, "%s %s\n", r.pal.dim.Sprintf("(%d/%d)", index, total), url)
}

// current returns the metadata of the URL being processed, when known.
func (r *consoleReporter) current() model.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.item
}

func (r *consoleReporter) Meta(item model.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.item = item
	if r.mode != modeNormal {
		return
	}
	r.clearLocked()
	title := item.Title
	if title == "" {
		title = item.URL
	}
	fmt.Fprintf(r.out, "%s %s\n", r.pal.bold.Sprint(title), r.pal.dim.Sprintf("(%s · %s)", providerLabel(item.Provider), titleCase(string(item.Kind))))
}

func (r *consoleReporter) Entry(index, total int, item model.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != modeNormal {
		return
	}
	r.clearLocked()
	title := item.Title
	if title == "" {
		title = item.URL
	}
	fmt.Fprintf(r.out, "%s %s\n", r.pal.dim.Sprintf("[%d/%d]", index, total), shorten(title, maxLabelWidth+12))
}

func (r *consoleReporter) StageStarted(stage, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != modeNormal {
		return
	}
	line := r.pal.stage.Sprint(stage)
	if detail != "" {
		line += " " + r.pal.dim.Sprint(shorten(detail, maxDetailWidth))
	}
	if r.live {
		r.drawLocked(line)
		return
	}
	if r.verbose {
		fmt.Fprintln(r.out, line)
	}
}

func (r *consoleReporter) Step(ev model.StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != modeNormal {
		return
	}
	r.clearLocked()
	fmt.Fprintln(r.out, r.formatStep(ev))
}

func (r *consoleReporter) Progress(p model.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live || r.mode != modeNormal {
		return
	}
	final := p.Status == "finished" || (p.TotalBytes > 0 && p.DownloadedBytes >= p.TotalBytes)
	now := r.now()
	if !final && now.Sub(r.lastDraw) < progressRedraw {
		return
	}
	r.lastDraw = now
	r.drawLocked(r.formatProgress(p))
}

// failure reports a failed URL. Errors stay visible in quiet mode.
func (r *consoleReporter) failure(f failureRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == modePaths || r.mode == modeJSON {
		return
	}
	r.clearLocked()
	prefix := ""
	if f.Stage != "" {
		prefix = f.Stage + ": "
	}
	fmt.Fprintf(r.out, "%s %s%s %s\n", r.pal.fail.Sprint("Error:"), prefix, f.Message, r.pal.dim.Sprintf("(%s)", f.URL))
}

func (r *consoleReporter) hint(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != modeNormal || text == "" {
		return
	}
	r.clearLocked()
	fmt.Fprintln(r.out, r.pal.warn.Sprint("Hint: ")+text)
}

func (r *consoleReporter) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
}

func (r *consoleReporter) formatStep(ev model.StageEvent) string {
	badge := r.pal.ok.Sprint("OK  ")
	if !ev.OK {
		badge = r.pal.fail.Sprint("FAIL")
	}
	var extras []string
	if ev.DurationSeconds > 0 {
		extras = append(extras, r.pal.dim.Sprint(formatClock(ev.DurationSeconds)))
	}
	detail := strings.TrimSpace(ev.Detail)
	showDetail := r.verbose || !ev.OK || strings.HasPrefix(strings.ToLower(detail), "skipped") || ev.Stage == model.StageSaved
	if detail != "" && showDetail {
		width := maxDetailWidth
		if ev.Stage == model.StageSaved {
			width = len(detail)
		}
		extras = append(extras, r.pal.dim.Sprint(shorten(detail, width)))
	}
	line := fmt.Sprintf("%s %s", badge, shorten(ev.Stage, maxLabelWidth))
	if len(extras) > 0 {
		line += " " + strings.Join(extras, r.pal.dim.Sprint(" | "))
	}
	return line
}

func (r *consoleReporter) formatProgress(p model.Progress) string {
	parts := []string{r.pal.stage.Sprint(model.StageDownloading)}
	if pct := p.Percent(); pct >= 0 {
		parts = append(parts, fmt.Sprintf("%3.0f%%", pct))
	} else if p.DownloadedBytes > 0 {
		parts = append(parts, textutil.FormatBytes(p.DownloadedBytes))
	}
	if p.Speed > 0 {
		value, label := textutil.FormatSpeed(p.Speed, r.speedUnit)
		parts = append(parts, strings.TrimSpace(value)+" "+label)
	}
	if p.ETASeconds > 0 {
		parts = append(parts, r.pal.dim.Sprint("ETA "+formatClock(p.ETASeconds)))
	}
	return strings.Join(parts, "  ")
}

func (r *consoleReporter) drawLocked(line string) {
	fmt.Fprint(r.out, "\r\033[2K"+line)
	r.transient = true
}

func (r *consoleReporter) clearLocked() {
	if !r.transient {
		return
	}
	fmt.Fprint(r.out, "\r\033[2K")
	r.transient = false
}

// formatClock renders seconds as mm:ss, or h:mm:ss past an hour.
func formatClock(seconds float64) string {
	total := int(seconds + 0.5)
	if total < 0 {
		total = 0
	}
	hours, rem := total/3600, total%3600
	mins, secs := rem/60, rem%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

func shorten(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max || max < 4 {
		return text
	}
	return strings.TrimRight(string(runes[:max-3]), " ") + "..."
}
