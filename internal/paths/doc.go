// Package paths derives output file names from normalized metadata.
//
// Names are deterministic: the same item always maps to the same plan, and
// sanitizing an already sanitized segment is a no-op. Collisions with
// existing files are resolved by EnsureUnique, which appends " (n)" before
// the extension.
package paths
