package services

import (
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/tunetx/internal/shared"
)

// Compile-time checks that every adapter satisfies Service.
var (
	_ Service = (*SpotifyService)(nil)
	_ Service = (*YouTubeService)(nil)
	_ Service = (*DeezerService)(nil)
	_ Service = (*LocalService)(nil)
)

func TestRegistry(t *testing.T) {
	t.Run("Descriptors in display order", func(t *testing.T) {
		var tokens []string
		for _, d := range Descriptors() {
			tokens = append(tokens, d.Token)
		}
		if !slices.Equal(tokens, []string{"spotify", "ytmusic", "deezer", "local"}) {
			t.Errorf("unexpected order %v", tokens)
		}
	})

	t.Run("Descriptors returns a copy", func(t *testing.T) {
		d := Descriptors()
		d[0].Name = "changed"
		if Descriptors()[0].Name != "Spotify" {
			t.Error("registry should not be mutable through Descriptors")
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		d, err := Lookup(" YTMusic ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d != YouTubeDescriptor {
			t.Errorf("expected YouTube descriptor, got %+v", d)
		}

		if _, err := Lookup("tidal"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Destinations require auth", func(t *testing.T) {
		if slices.Contains(DestinationTokens(), "deezer") {
			t.Error("deezer must not be a destination")
		}
		if len(OriginTokens()) != 4 || len(DestinationTokens()) != 3 {
			t.Errorf("unexpected tokens %v / %v", OriginTokens(), DestinationTokens())
		}
	})
}

func TestChunk(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}

	got := chunk(ids, 2)
	if len(got) != 3 || len(got[2]) != 1 || got[2][0] != "e" {
		t.Errorf("unexpected chunks %v", got)
	}
	if len(chunk(nil, 2)) != 0 {
		t.Error("expected no chunks for empty input")
	}
	if len(chunk(ids, 5)) != 1 {
		t.Error("expected a single chunk when size equals length")
	}
}
