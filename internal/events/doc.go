// Package events fans orchestrator updates out to live observers.
//
// A Broker hands every subscriber its own bounded channel. Publish never
// blocks: a subscriber whose buffer is full misses the event and its drop
// counter grows. Nothing is persisted; late joiners read the orchestrator
// snapshot first and then follow the stream.
package events
