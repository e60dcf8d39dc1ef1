// Package urls classifies source URLs by provider and expands command line
// arguments that point at URL list files.
package urls
