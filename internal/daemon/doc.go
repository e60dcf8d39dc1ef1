// Package daemon coordinates the long-running web host process.
//
// It wires configuration, the history store, the event broker, the
// orchestrator, and the HTTP server into a single lifecycle with flock-based
// locking so only one web host runs per data directory. Preflight results are
// gathered at start and logged; they never block startup.
//
// Keep orchestration logic here: download behaviour lives in pipeline and
// orchestrator while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
