package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/tunetx/internal/models"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item] with a selection mark.
type playlistItem struct {
	playlist models.Playlist
	liked    bool
	selected bool
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string {
	if i.selected {
		return "[x] " + i.playlist.Name
	}
	return "[ ] " + i.playlist.Name
}
func (i playlistItem) Description() string {
	switch {
	case i.liked:
		return "Liked songs"
	case i.playlist.Description != "":
		return i.playlist.Description
	default:
		return i.playlist.ID
	}
}
