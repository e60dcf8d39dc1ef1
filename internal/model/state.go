package model

import "time"

// Stage names reported in StageEvents and failure summaries.
const (
	StageDetected    = "Detected"
	StageMetadata    = "Metadata"
	StageResolve     = "Resolve"
	StageDownload    = "Download"
	StageDownloading = "Downloading"
	StagePostProcess = "Post-process"
	StageTagging     = "Tagging"
	StageSaved       = "Saved"
)

// StageEvent reports the outcome of one pipeline step.
type StageEvent struct {
	ItemID          int64   `json:"item_id,omitempty"`
	Stage           string  `json:"step"`
	OK              bool    `json:"ok"`
	Detail          string  `json:"detail,omitempty"`
	DurationSeconds float64 `json:"duration,omitempty"`
}

// Status is the lifecycle state of an orchestrated item.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusError
}

var statusRank = map[Status]int{
	StatusQueued:  0,
	StatusRunning: 1,
	StatusDone:    2,
	StatusError:   2,
}

// CanTransition reports whether moving from s to next keeps status monotonic.
// Terminal states never change.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return !s.IsTerminal()
	}
	if s.IsTerminal() {
		return false
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// StepOutcome is the last recorded result for a step label.
type StepOutcome struct {
	OK       bool    `json:"ok"`
	Detail   string  `json:"detail,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Progress is a snapshot of transfer progress.
type Progress struct {
	DownloadedBytes int64   `json:"downloaded_bytes,omitempty"`
	TotalBytes      int64   `json:"total_bytes,omitempty"`
	Speed           float64 `json:"speed,omitempty"`
	ETASeconds      float64 `json:"eta,omitempty"`
	Status          string  `json:"status,omitempty"`
	Filename        string  `json:"filename,omitempty"`
	PercentDone     float64 `json:"percent,omitempty"`
	// SpeedDisplay and SpeedUnit are filled in for observers according to
	// the ui.speed_unit setting.
	SpeedDisplay    string  `json:"speed_display,omitempty"`
	SpeedUnit       string  `json:"speed_unit,omitempty"`
}

// Percent returns completion in [0,100], or -1 when the total is unknown.
func (p Progress) Percent() float64 {
	if p.PercentDone > 0 {
		return p.PercentDone
	}
	if p.TotalBytes <= 0 {
		return -1
	}
	pct := float64(p.DownloadedBytes) / float64(p.TotalBytes) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// ItemState is the live, observable state of one orchestrated URL.
type ItemState struct {
	ID        int64                  `json:"id"`
	URL       string                 `json:"url"`
	Status    Status                 `json:"status"`
	Title     string                 `json:"title,omitempty"`
	Provider  Provider               `json:"provider,omitempty"`
	Kind      MediaKind              `json:"kind,omitempty"`
	Current   string                 `json:"current,omitempty"`
	Progress  *Progress              `json:"progress,omitempty"`
	Steps     map[string]StepOutcome `json:"steps"`
	Paths     []string               `json:"paths"`
	Error     string                 `json:"error,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Clone returns a deep copy safe to hand to observers.
func (s ItemState) Clone() ItemState {
	out := s
	out.Steps = make(map[string]StepOutcome, len(s.Steps))
	for k, v := range s.Steps {
		out.Steps[k] = v
	}
	out.Paths = append([]string(nil), s.Paths...)
	if s.Progress != nil {
		p := *s.Progress
		out.Progress = &p
	}
	return out
}
