// Package webhost serves the local browser UI for the orchestrator.
//
// Routes:
//
//	GET  /         embedded single-page UI
//	GET  /events   server-sent events, one JSON object per data line, ": ping" every 10s
//	GET  /state    {"items": [...]} snapshot for late joiners
//	POST /enqueue  JSON {"urls": [...]} or newline-separated text; returns {"queued": n}
//	POST /open     JSON {"path": "..."}; reveals a saved file under output_dir
//	GET  /history  recent finished items and batches from the history store
//
// The server binds to loopback by default and has no authentication.
package webhost
