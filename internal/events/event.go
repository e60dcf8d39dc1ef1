package events

import (
	"time"

	"ripmedia/internal/model"
)

// Type names an event on the stream.
type Type string

const (
	TypeQueued   Type = "queued"
	TypeMeta     Type = "meta"
	TypeStatus   Type = "status"
	TypeProgress Type = "progress"
	TypeStep     Type = "step"
	TypeDone     Type = "done"
	TypeError    Type = "error"
)

// Event is one update about an orchestrated item. Only the fields relevant to
// Type are set.
type Event struct {
	Sequence uint64           `json:"seq"`
	Type     Type             `json:"type"`
	ID       int64            `json:"id"`
	BatchID  string           `json:"batch_id,omitempty"`
	URL      string           `json:"url,omitempty"`
	Status   model.Status     `json:"status,omitempty"`
	Title    string           `json:"title,omitempty"`
	Provider model.Provider   `json:"provider,omitempty"`
	Kind     model.MediaKind  `json:"kind,omitempty"`
	Current  string           `json:"current,omitempty"`
	Step     string           `json:"step,omitempty"`
	OK       *bool            `json:"ok,omitempty"`
	Detail   string           `json:"detail,omitempty"`
	Duration float64          `json:"duration,omitempty"`
	Progress *model.Progress  `json:"progress,omitempty"`
	Paths    []string         `json:"paths,omitempty"`
	Stage    string           `json:"stage,omitempty"`
	Error    string           `json:"error,omitempty"`
	Item     *model.ItemState `json:"item,omitempty"`
	Time     time.Time        `json:"ts"`
}

// StepEvent builds a step event from a pipeline StageEvent.
func StepEvent(id int64, ev model.StageEvent) Event {
	ok := ev.OK
	return Event{
		Type:     TypeStep,
		ID:       id,
		Step:     ev.Stage,
		OK:       &ok,
		Detail:   ev.Detail,
		Duration: ev.DurationSeconds,
	}
}
