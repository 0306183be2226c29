// Package models defines the domain entities shared by the catalog loader, the collage composer and the CLI.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): plain structs built from Spotify responses
//   - [Track] : a liked song with its smallest album image and play URI
//   - [Playlist] : basic playlist metadata
//   - [PlaylistExport] : a playlist with its complete track listing
//   - [CachedCatalog] : the serialized liked-songs cache blob
//   - [LoadState] : progress of the incremental liked-songs load
//
// 2. Persistent Entities: database-backed models
//   - [Collage] : a generated collage image and the parameters used to build it
//
// Persistent entities implement [Model]. [Repository] defines the CRUD surface their repositories expose.
package models
