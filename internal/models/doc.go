// Package models defines the value types exchanged between music services and the transfer engine.
//
//   - [Song] : a track on one platform (id, name, artist)
//   - [Playlist] : playlist metadata (id, name, description)
//
// Identifiers are opaque and only meaningful on the platform that issued them.
// They are never compared across platforms; cross-platform identity is decided
// by the match package from song names alone.
//
// Values are rebuilt on every fetch and are never cached or mutated in place.
package models
