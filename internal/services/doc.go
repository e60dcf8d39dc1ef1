// Package services defines shared utilities consumed by the pipeline and the
// external integrations (yt-dlp, Spotify).
//
// Key responsibilities:
//   - Context helpers that stamp item IDs, stage names, and correlation
//     identifiers for logging.
//   - Error markers plus the Wrap helper so failures carry the stage they
//     happened in and can be classified with errors.Is.
//   - PartialSuccessError, which carries the saved paths and per-entry
//     failures of a collection or batch.
//
// Integrations live in subpackages (services/ytdlp, services/spotify) and
// return errors built with Wrap so the CLI and web host can summarise them
// uniformly.
package services
