// Package orchestrator runs many URLs through the pipeline concurrently and
// keeps the live state observers see.
//
// A Manager owns one ItemState per enqueued URL. Work is bounded by a
// semaphore sized from webhost.parallel; collections still occupy a single
// slot because the pipeline walks their entries sequentially. Each item's
// state is written only by the worker running it, through the manager's
// update helpers, and every change is republished on the events Broker.
//
// When every item of an Enqueue batch has finished, the batch is summarized
// into history and an ntfy notification. Individual failures are recorded
// and notified as they happen.
package orchestrator
