// Package notifications delivers batch and failure events to ntfy.
//
// NewService returns a no-op Service when no topic is configured, so the
// orchestrator can publish unconditionally. Batch and error events can be
// switched off independently in the [notifications] config section.
package notifications
