// Package main hosts the ripmedia CLI entrypoint and command graph.
//
// The Cobra command tree covers one-shot downloads, metadata inspection, the
// local web host, configuration scaffolding, download history, and a
// notification smoke test. A bare URL argument is treated as "download" so
// `ripmedia <url>` works without naming the subcommand.
//
// Keep this package lean: behaviour lives in the internal packages and the
// commands here only translate flags, render output, and map failures onto
// exit codes.
package main
