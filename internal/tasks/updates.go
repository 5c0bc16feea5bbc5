package tasks

import (
	"fmt"

	"github.com/desertthunder/tunetx/internal/models"
)

// ProgressUpdate represents a progress event during a transfer.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Transfer phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Phase is the state a single playlist transfer is in.
type Phase int

const (
	Fetching Phase = iota
	Creating
	Populating
	Done
)

func (p Phase) String() string {
	switch p {
	case Fetching:
		return "fetching"
	case Creating:
		return "creating"
	case Populating:
		return "populating"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchingUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Fetching,
		Message: fmt.Sprintf("Fetching %s...", name),
	}
}

func creatingUpdate(name, handle string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Creating,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", name, handle),
		Data:    handle,
	}
}

func populatingUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Populating,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, song),
		Data:    song,
	}
}

func committingUpdate(total, matched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Populating,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Adding %d matched songs...", matched),
	}
}

func doneUpdate(name string, total int, unmatched []models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    total - len(unmatched),
		Total:   total,
		Message: fmt.Sprintf("✓ %s (%d/%d matched)", name, total-len(unmatched), total),
		Data:    unmatched,
	}
}
