// Package repositories implements SQLite persistence for the local music library.
//
// The library is a small catalog that behaves like any other backend:
//   - [TrackRepository] : catalog tracks with name/artist lookups
//   - [PlaylistRepository] : playlists and their ordered track membership
//
// Liked songs are stored as the membership of the reserved [LikedPlaylistID] row,
// which is created by the schema migrations and never listed as a regular playlist.
package repositories
