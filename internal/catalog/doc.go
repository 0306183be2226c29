// Package catalog loads the user's liked songs incrementally.
//
// [State] holds the track list and [models.LoadState] behind a mutex. [Loader] fills it from a
// page [Source], preferring a [Cache] when one holds a fresh copy. Loads are single-flighted, pages
// within a load are sequential and paced by a rate limiter, and tracks are only ever appended in
// the order the server returns them.
package catalog
