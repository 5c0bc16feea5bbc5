// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/shared"
)

// Call records one invocation on a [MockService].
type Call struct {
	Method string
	Args   []string
}

var mutating = []string{"CreatePlaylist", "AddTrack", "AddTracks", "LikeTrack", "LikeTracks"}

// MockService is an in-memory [services.Service] that records every call.
//
// Searches are answered from Catalog by exact song name; a name missing from Catalog
// yields no candidate. Errors keyed by method name are returned instead of the normal result.
type MockService struct {
	Desc      services.Descriptor
	Playlists []models.Playlist
	Tracks    map[string][]models.Song // playlist id -> songs; a nil value simulates "no data"
	Liked     []models.Song
	Catalog   map[string]models.Song // search name -> candidate
	UserID    string

	Errors       map[string]error // method -> error
	SearchErrors map[string]error // search name -> error

	mu      sync.Mutex
	calls   []Call
	created int
}

// NewMockService returns a mock advertising d with an authenticated user.
func NewMockService(d services.Descriptor) *MockService {
	return &MockService{
		Desc:         d,
		Tracks:       map[string][]models.Song{},
		Catalog:      map[string]models.Song{},
		UserID:       "mock-user",
		Errors:       map[string]error{},
		SearchErrors: map[string]error{},
	}
}

func (m *MockService) record(method string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Args: args})
	return m.Errors[method]
}

// Calls returns a copy of every recorded call in order.
func (m *MockService) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// CallCount returns how many times method was invoked.
func (m *MockService) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MutatingCalls counts create, add and like calls.
func (m *MockService) MutatingCalls() int {
	n := 0
	for _, c := range m.Calls() {
		if slices.Contains(mutating, c.Method) {
			n++
		}
	}
	return n
}

// Committed returns the song ids passed to add or like calls, in call order.
func (m *MockService) Committed() []string {
	var ids []string
	for _, c := range m.Calls() {
		switch c.Method {
		case "AddTrack":
			ids = append(ids, c.Args[1])
		case "AddTracks":
			ids = append(ids, c.Args[1:]...)
		case "LikeTrack", "LikeTracks":
			ids = append(ids, c.Args...)
		}
	}
	return ids
}

func (m *MockService) Descriptor() services.Descriptor { return m.Desc }

func (m *MockService) ListPlaylists(context.Context) ([]models.Playlist, error) {
	if err := m.record("ListPlaylists"); err != nil {
		return nil, err
	}
	return slices.Clone(m.Playlists), nil
}

func (m *MockService) ListPlaylistTracks(_ context.Context, playlistID string) ([]models.Song, error) {
	if err := m.record("ListPlaylistTracks", playlistID); err != nil {
		return nil, err
	}
	songs, ok := m.Tracks[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return slices.Clone(songs), nil
}

func (m *MockService) ListLikedSongs(context.Context) ([]models.Song, error) {
	if err := m.record("ListLikedSongs"); err != nil {
		return nil, err
	}
	return slices.Clone(m.Liked), nil
}

func (m *MockService) SearchTrack(_ context.Context, name, artist string) (*models.Song, error) {
	if err := m.record("SearchTrack", name, artist); err != nil {
		return nil, err
	}
	if err := m.SearchErrors[name]; err != nil {
		return nil, err
	}
	song, ok := m.Catalog[name]
	if !ok {
		return nil, nil
	}
	return &song, nil
}

func (m *MockService) CreatePlaylist(_ context.Context, name, description string) (string, error) {
	if err := m.record("CreatePlaylist", name, description); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	return fmt.Sprintf("created-%d", m.created), nil
}

func (m *MockService) AddTrack(_ context.Context, playlistID, songID string) error {
	return m.record("AddTrack", playlistID, songID)
}

func (m *MockService) AddTracks(_ context.Context, playlistID string, songIDs []string) error {
	return m.record("AddTracks", append([]string{playlistID}, songIDs...)...)
}

func (m *MockService) LikeTrack(_ context.Context, songID string) error {
	return m.record("LikeTrack", songID)
}

func (m *MockService) LikeTracks(_ context.Context, songIDs []string) error {
	return m.record("LikeTracks", songIDs...)
}

func (m *MockService) CurrentUserID(context.Context) (string, error) {
	if err := m.record("CurrentUserID"); err != nil {
		return "", err
	}
	if m.UserID == "" {
		return "", shared.ErrNotAuthenticated
	}
	return m.UserID, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
