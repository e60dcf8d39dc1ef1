package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUsage    = errors.New("usage error")
	ErrDetect   = errors.New("detect error")
	ErrMetadata = errors.New("metadata error")
	ErrResolve  = errors.New("resolve error")
	ErrDownload = errors.New("download error")
	ErrTag      = errors.New("tag error")
)

// StageError is a classified failure that remembers the pipeline stage it
// happened in. Kind is one of the exported markers above.
type StageError struct {
	Kind    error
	Stage   string
	Message string
	Err     error
}

func (e *StageError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if e.Err == nil {
		if msg == "" && e.Kind != nil {
			return e.Kind.Error()
		}
		return msg
	}
	if msg == "" {
		return e.Err.Error()
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap exposes both the marker and the underlying cause to errors.Is/As.
func (e *StageError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap builds a StageError tagged with the provided marker so callers can
// classify it later with errors.Is. A nil marker defaults to ErrDownload.
func Wrap(marker error, stage, message string, err error) error {
	if marker == nil {
		marker = ErrDownload
	}
	return &StageError{
		Kind:    marker,
		Stage:   strings.TrimSpace(stage),
		Message: strings.TrimSpace(message),
		Err:     err,
	}
}

// Errorf is Wrap without a cause, formatting the message.
func Errorf(marker error, stage, format string, args ...any) error {
	return Wrap(marker, stage, fmt.Sprintf(format, args...), nil)
}

// Failure is one failed entry inside a batch or collection.
type Failure struct {
	URL     string `json:"url"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

// PartialSuccessError reports a batch where some entries were saved and some
// failed.
type PartialSuccessError struct {
	Message  string
	Stage    string
	Saved    []string
	Failures []Failure
}

func (e *PartialSuccessError) Error() string { return e.Message }

// StageOf returns the stage recorded on err, or "" when unknown.
func StageOf(err error) string {
	var partial *PartialSuccessError
	if errors.As(err, &partial) {
		return partial.Stage
	}
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Details returns the display message and stage for err.
func Details(err error) (message, stage string) {
	if err == nil {
		return "", ""
	}
	return err.Error(), StageOf(err)
}

// IsDetectionFailure reports whether a failure happened before any work
// started: unsupported URLs or bad input.
func IsDetectionFailure(err error) bool {
	return errors.Is(err, ErrDetect) || errors.Is(err, ErrUsage)
}
