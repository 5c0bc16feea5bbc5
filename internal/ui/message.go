package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgProgressUpdate
	MsgPlaylistDone
	MsgTransferComplete
)

type fetched struct {
	playlists []models.Playlist
	err       error
}

type completed struct {
	batch tasks.BatchResult
	err   error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: fetched{playlists, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// playlistDoneMsg is the constructor for [MsgPlaylistDone]
func playlistDoneMsg(result tasks.PlaylistResult) Msg {
	return Msg{kind: MsgPlaylistDone, data: result}
}

// transferCompleteMsg is the constructor for [MsgTransferComplete]
func transferCompleteMsg(batch tasks.BatchResult, err error) Msg {
	return Msg{kind: MsgTransferComplete, data: completed{batch, err}}
}
