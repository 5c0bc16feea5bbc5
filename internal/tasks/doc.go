// Package tasks moves playlists and liked songs from one music service to another.
//
// # Transfers
//
// A [Transferer] binds an origin and a destination [services.Service]. Each playlist
// goes through four phases:
//
//  1. [Fetching] : read the source songs; a failed or empty read aborts the playlist
//  2. [Creating] : create the destination playlist (a placeholder handle in dry-run)
//  3. [Populating] : search every song on the destination in source order and keep
//     candidates whose names pass [match.IsAcceptableMatch]
//  4. [Done] : return the songs that could not be matched, in source order
//
// Matched songs are committed all at once when the destination advertises CanBulkAdd,
// otherwise one at a time as they are found. Dry-run performs every read and no writes.
//
// [Transferer.TransferLikedSongs] follows the same path without the Creating phase.
//
// # Progress Reporting
//
// An optional channel receives [ProgressUpdate] values. Sends use select with default
// so a slow reader never stalls a transfer.
package tasks
