package orchestrator

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ripmedia/internal/events"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/textutil"
)

// itemReporter adapts pipeline callbacks for one item. It is used only by the
// worker running that item.
type itemReporter struct {
	m            *Manager
	id           int64
	logger       *slog.Logger
	sampler      *logging.ProgressSampler
	label        string
	lastProgress time.Time
}

func (r *itemReporter) Meta(item model.Item) {
	snapshot, ok := r.m.update(r.id, func(s *model.ItemState) {
		s.Title = displayTitle(item)
		s.Provider = item.Provider
		s.Kind = item.Kind
	})
	if !ok {
		return
	}
	r.m.publish(events.Event{
		Type:     events.TypeMeta,
		ID:       r.id,
		Title:    snapshot.Title,
		Provider: snapshot.Provider,
		Kind:     snapshot.Kind,
	})
}

func (r *itemReporter) Entry(index, total int, item model.Item) {
	r.setCurrent(fmt.Sprintf("%d/%d %s", index, total, displayTitle(item)))
}

func (r *itemReporter) StageStarted(stage, detail string) {
	label := stage
	if detail = strings.TrimSpace(detail); detail != "" {
		label = stage + ": " + detail
	}
	r.setCurrent(label)
}

func (r *itemReporter) Step(ev model.StageEvent) {
	ev.ItemID = r.id
	if _, ok := r.m.update(r.id, func(s *model.ItemState) {
		s.Steps[ev.Stage] = model.StepOutcome{OK: ev.OK, Detail: ev.Detail, Duration: ev.DurationSeconds}
	}); !ok {
		return
	}
	r.m.publish(events.StepEvent(r.id, ev))
}

func (r *itemReporter) Progress(p model.Progress) {
	now := r.m.now()
	final := p.Status == "finished" || (p.TotalBytes > 0 && p.DownloadedBytes >= p.TotalBytes)
	if !final && !r.lastProgress.IsZero() && now.Sub(r.lastProgress) < r.m.progressInterval {
		return
	}
	r.lastProgress = now
	if p.Speed > 0 {
		p.SpeedDisplay, p.SpeedUnit = textutil.FormatSpeed(p.Speed, r.m.cfg.SpeedUnit)
		p.SpeedDisplay = strings.TrimSpace(p.SpeedDisplay)
	}
	if r.logger != nil && r.sampler.ShouldLog(p.Percent(), r.label) {
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, "download_progress"),
			logging.Float64("percent", p.Percent()),
		}
		if p.SpeedDisplay != "" {
			attrs = append(attrs, logging.String("speed", p.SpeedDisplay+" "+p.SpeedUnit))
		}
		if p.ETASeconds > 0 {
			attrs = append(attrs, logging.String("eta", textutil.FormatSeconds(p.ETASeconds)))
		}
		r.logger.Debug("download progress", logging.Args(attrs...)...)
	}
	if _, ok := r.m.update(r.id, func(s *model.ItemState) {
		cp := p
		s.Progress = &cp
	}); !ok {
		return
	}
	r.m.publish(events.Event{Type: events.TypeProgress, ID: r.id, Progress: &p})
}

func (r *itemReporter) setCurrent(label string) {
	snapshot, ok := r.m.update(r.id, func(s *model.ItemState) {
		s.Current = label
		s.Progress = nil
	})
	if !ok {
		return
	}
	r.label = label
	r.lastProgress = time.Time{}
	r.m.publish(events.Event{Type: events.TypeStatus, ID: r.id, Status: snapshot.Status, Current: snapshot.Current})
}

func displayTitle(item model.Item) string {
	switch {
	case item.Artist != "" && item.Title != "" && !item.Kind.IsCollection():
		return item.Artist + " - " + item.Title
	case item.Title != "":
		return item.Title
	default:
		return item.URL
	}
}
