// Package logs reads ripmedia's log file for the `ripmedia logs` command.
//
// Last returns the trailing lines with bounded memory and the offset reached,
// and Follow polls from that offset, handing each new line to a callback until
// the context ends. A file that shrinks (truncated or rotated) is re-read from
// the start.
package logs
