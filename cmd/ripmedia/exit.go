package main

import (
	"fmt"

	"ripmedia/internal/model"
	"ripmedia/internal/services"
)

// Exit codes shared with scripts wrapping the CLI.
const (
	exitOK          = 0
	exitOperational = 1
	exitUsage       = 2
)

// exitError carries a process exit code. A nil err means the failure has
// already been reported and nothing more is printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

// failureRecord is one failed URL or collection entry in a batch.
type failureRecord struct {
	URL       string `json:"url"`
	Stage     string `json:"stage,omitempty"`
	Message   string `json:"message"`
	detection bool
}

func failureFromError(url string, err error) failureRecord {
	msg, stage := services.Details(err)
	return failureRecord{URL: url, Stage: stage, Message: msg, detection: services.IsDetectionFailure(err)}
}

func failureFromPartial(f services.Failure) failureRecord {
	return failureRecord{URL: f.URL, Stage: f.Stage, Message: f.Message, detection: f.Stage == model.StageDetected}
}

// batchExitCode: 0 when nothing failed, 2 when nothing was saved and every
// failure happened at detection, 1 otherwise.
func batchExitCode(saved int, failures []failureRecord) int {
	if len(failures) == 0 {
		return exitOK
	}
	if saved == 0 {
		allDetection := true
		for _, f := range failures {
			if !f.detection {
				allDetection = false
				break
			}
		}
		if allDetection {
			return exitUsage
		}
	}
	return exitOperational
}
