// Package config loads, normalizes, and validates ripmedia configuration.
//
// Configuration is TOML, read from ~/.config/ripmedia/config.toml, a project
// local ripmedia.toml, or an explicit --config path. Load fills defaults,
// expands "~" in paths, folds in Spotify credentials from the environment, and
// rejects invalid values before any download starts.
package config
