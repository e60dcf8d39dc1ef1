// Package deps locates the external binaries ripmedia drives.
package deps
