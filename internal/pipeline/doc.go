// Package pipeline drives one source URL through metadata, optional
// resolution, download, post-processing, tagging and save.
//
// Engine.Run reports every step to a Reporter as a model.StageEvent and
// returns the saved paths. Spotify tracks are resolved to a YouTube or
// SoundCloud source first; a low-confidence best match fails the item unless
// the caller supplies a Chooser. Albums and playlists are expanded by the
// collection runner, which runs entries sequentially and aggregates partial
// failures into a services.PartialSuccessError.
package pipeline
