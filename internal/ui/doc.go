// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one transfer:
//  1. [PickerView] : mark playlists (and the liked songs entry) to transfer
//  2. [ConfirmView] : confirm the route and the selection
//  3. [TransferView] : follow progress while the [tasks.Transferer] runs
//  4. [ResultView] : per-playlist match counts and the unmatched songs
//
// The [Model] implements the standard Init/Update/View pattern, receiving messages via the Msg union type.
// The transfer runs on one background goroutine; progress, per-playlist results, and completion arrive on channels.
//
// Keyboard navigation uses vim-style bindings (j/k, space, a, enter, esc, y/n, r, q) with contextual help
// from charmbracelet/bubbles/help.
package ui
