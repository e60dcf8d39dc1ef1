// Package preflight provides readiness checks for the binaries and paths
// ripmedia depends on.
//
// The serve command runs RunAll before binding the web host and logs each
// failure; "ripmedia config validate" prints the same results as a table.
// Optional checks never fail the run.
package preflight
