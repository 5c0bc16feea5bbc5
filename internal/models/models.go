// package models defines the data model shared by every music service
package models

import "fmt"

// Song is a single track as reported by a music service.
type Song struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// String renders the song as "Name - Artist", or just the name when the artist is unknown.
func (s Song) String() string {
	if s.Artist == "" {
		return s.Name
	}
	return fmt.Sprintf("%s - %s", s.Name, s.Artist)
}

// Playlist is playlist metadata as reported by a music service.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SongIDs returns the ids of songs in order.
func SongIDs(songs []Song) []string {
	ids := make([]string, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	return ids
}

// SongNames returns the names of songs in order.
func SongNames(songs []Song) []string {
	names := make([]string, len(songs))
	for i, s := range songs {
		names[i] = s.Name
	}
	return names
}
