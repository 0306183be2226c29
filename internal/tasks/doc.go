// Package tasks runs the long operations behind the CLI and TUI with real-time progress reporting.
//
// # Collages
//
// [CollageEngine.Generate] takes a snapshot of the liked-songs catalog and:
//
//  1. Downloads each track's album art one image at a time through a [services.ImageFetcher]
//  2. Skips anything that fails to download or decode
//  3. Composes the survivors with [collage.Compose]
//  4. Writes collage-<uuid>.png and records it through a [CollageRecorder]
//
// # Playlist exports
//
// [ExportEngine.BulkExport] fetches playlists through a rate limiter and hands them to a
// pool of writers. Results for every playlist, successful or not, end up in
// export_manifest.json in the output directory.
//
// # Progress Reporting
//
// Both engines report through a [ProgressUpdate] channel. Sends use select with default,
// so a slow or absent reader never stalls the work.
package tasks
