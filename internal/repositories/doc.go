// Package repositories implements SQLite persistence for tessera.
//
// Key Implementations:
//   - [SQLiteStore] : a string key-value store backing preferences, the token and the catalog cache
//   - [CatalogCache] : the single-slot liked-songs cache with a time-to-live
//   - [Preferences] : typed access to user preferences with defaults and bounds
//   - [TokenStore] : the persisted OAuth2 token
//   - [CollageRepository] : history of generated collages
//
// Anything satisfying [KVStore] can stand in for SQLite, which is how the loader tests inject failures.
package repositories
