package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/shared"
	tu "github.com/desertthunder/tunetx/internal/testing"
)

// fixture is a Deezer origin with two playlists and a Spotify destination that knows two of three songs.
type fixture struct {
	runner      *Runner
	output      *bytes.Buffer
	origin      *tu.MockService
	destination *tu.MockService
}

func newFixture(t *testing.T, input string) *fixture {
	t.Helper()

	origin := tu.NewMockService(services.DeezerDescriptor)
	origin.Playlists = []models.Playlist{{ID: "p1", Name: "Road Trip"}, {ID: "p2", Name: "Focus"}}
	origin.Tracks["p1"] = []models.Song{
		{ID: "o1", Name: "Yesterday", Artist: "The Beatles"},
		{ID: "o2", Name: "Unknown Song", Artist: "Nobody"},
	}
	origin.Tracks["p2"] = []models.Song{{ID: "o3", Name: "Bohemian Rhapsody", Artist: "Queen"}}
	origin.Liked = []models.Song{{ID: "o4", Name: "Yesterday", Artist: "The Beatles"}}

	destination := tu.NewMockService(services.SpotifyDescriptor)
	destination.Catalog["Yesterday"] = models.Song{ID: "spotify:track:1", Name: "Yesterday", Artist: "The Beatles"}
	destination.Catalog["Bohemian Rhapsody"] = models.Song{ID: "spotify:track:2", Name: "Bohemian Rhapsody", Artist: "Queen"}

	mocks := map[string]*tu.MockService{
		services.DeezerDescriptor.Token:  origin,
		services.SpotifyDescriptor.Token: destination,
	}
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Output: output,
		Input:  strings.NewReader(input),
		Factory: func(_ context.Context, d services.Descriptor) (services.Service, error) {
			if m, ok := mocks[d.Token]; ok {
				return m, nil
			}
			return nil, shared.ErrServiceUnavailable
		},
	})
	return &fixture{runner: runner, output: output, origin: origin, destination: destination}
}

func (f *fixture) run(args ...string) error {
	return runApp(f.runner, args...)
}

func runApp(r *Runner, args ...string) error {
	app := NewApp(r)
	app.Before = nil
	return app.Run(context.Background(), append([]string{"tunetx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.input == nil {
				t.Error("expected input to default to stdin")
			}
			if runner.factory == nil {
				t.Error("expected the default service factory")
			}
			if runner.configFile() != "config.toml" {
				t.Errorf("configFile = %q, want config.toml", runner.configFile())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.NewLimitedWriter(1, &bytes.Buffer{})})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		seen := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if seen[cmd.Name] {
				t.Errorf("command %q registered twice", cmd.Name)
			}
			seen[cmd.Name] = true
		}
		for _, name := range []string{"transfer", "services", "playlists", "search", "spotify", "setup", "local", "tui"} {
			if !seen[name] {
				t.Errorf("missing command %q", name)
			}
		}
	})

	t.Run("Close", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		db, err := shared.NewDatabase(shared.MemoryDSN)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		runner.closers = append(runner.closers, db)

		if err := runner.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := db.Ping(); err == nil {
			t.Error("expected database to be closed")
		}
		if len(runner.closers) != 0 {
			t.Error("expected closers to be released")
		}
	})
}

func TestSaveTokens(t *testing.T) {
	t.Run("saves tokens successfully", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = "test_id"
		config.Credentials.Spotify.ClientSecret = "test_secret"
		if err := shared.SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to create test config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Config: config, ConfigPath: configPath})
		token := &oauth2.Token{AccessToken: "new_access_token", RefreshToken: "new_refresh_token"}
		if err := runner.saveTokens(token); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Credentials.Spotify.AccessToken != "new_access_token" {
			t.Errorf("expected access token to be updated, got %s", loaded.Credentials.Spotify.AccessToken)
		}
		if loaded.Credentials.Spotify.RefreshToken != "new_refresh_token" {
			t.Errorf("expected refresh token to be updated, got %s", loaded.Credentials.Spotify.RefreshToken)
		}
		if loaded.Credentials.Spotify.ClientID != "test_id" {
			t.Errorf("expected client id to survive, got %s", loaded.Credentials.Spotify.ClientID)
		}
	})

	t.Run("does not persist secrets from the environment", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		onDisk := shared.DefaultConfig()
		onDisk.Credentials.Spotify.ClientSecret = "file_secret"
		if err := shared.SaveConfig(configPath, onDisk); err != nil {
			t.Fatalf("failed to create test config: %v", err)
		}

		t.Setenv("SPOTIFY_CLIENT_SECRET", "env_secret")
		config, err := shared.LoadConfigOrDefault(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Credentials.Spotify.ClientSecret != "env_secret" {
			t.Fatalf("expected env override, got %s", config.Credentials.Spotify.ClientSecret)
		}

		runner := NewRunner(RunnerOpts{Config: config, ConfigPath: configPath})
		if err := runner.saveTokens(&oauth2.Token{AccessToken: "a"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Credentials.Spotify.ClientSecret != "file_secret" {
			t.Errorf("client secret on disk = %q, want file_secret", loaded.Credentials.Spotify.ClientSecret)
		}
	})

	t.Run("handles nil config error", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{ConfigPath: "/tmp/test.toml"})
		runner.config = nil

		err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
		if err == nil || !strings.Contains(err.Error(), "config is nil") {
			t.Errorf("expected nil config error, got %v", err)
		}
	})

	t.Run("handles empty configPath", func(t *testing.T) {
		config := shared.DefaultConfig()
		runner := NewRunner(RunnerOpts{Config: config})

		if err := runner.saveTokens(&oauth2.Token{AccessToken: "new_token", RefreshToken: "new_refresh"}); err != nil {
			t.Fatalf("expected no error with empty path, got %v", err)
		}
		if config.Credentials.Spotify.AccessToken != "new_token" {
			t.Error("expected config to be updated in memory")
		}
	})

	t.Run("handles SaveConfig failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:     shared.DefaultConfig(),
			ConfigPath: filepath.Join(t.TempDir(), "missing", "config.toml"),
		})

		err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
		if err == nil || !strings.Contains(err.Error(), "failed to save config") {
			t.Errorf("expected save config error, got %v", err)
		}
	})

	t.Run("handles Update error", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:     shared.DefaultConfig(),
			ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		})

		err := runner.saveTokens(nil)
		if err == nil || !strings.Contains(err.Error(), "failed to update spotify configuration") {
			t.Fatalf("expected update error, got %v", err)
		}
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput in chain, got %v", err)
		}
	})
}

func TestBuildService(t *testing.T) {
	ctx := context.Background()

	t.Run("spotify without a saved token", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		_, err := runner.buildService(ctx, services.SpotifyDescriptor)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("spotify without credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = ""
		runner := NewRunner(RunnerOpts{Config: config})

		_, err := runner.buildService(ctx, services.SpotifyDescriptor)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("spotify with a saved token", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.AccessToken = "access"
		runner := NewRunner(RunnerOpts{Config: config})

		svc, err := runner.buildService(ctx, services.SpotifyDescriptor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.Descriptor() != services.SpotifyDescriptor {
			t.Errorf("descriptor = %v", svc.Descriptor())
		}
	})

	t.Run("http backends", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		for _, d := range []services.Descriptor{services.YouTubeDescriptor, services.DeezerDescriptor} {
			svc, err := runner.buildService(ctx, d)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", d.Token, err)
			}
			if svc.Descriptor() != d {
				t.Errorf("descriptor = %v, want %v", svc.Descriptor(), d)
			}
		}
	})

	t.Run("local opens and migrates the library", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Database.Path = shared.MemoryDSN
		runner := NewRunner(RunnerOpts{Config: config})
		defer runner.Close()

		svc, err := runner.service(ctx, "local")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.ListPlaylists(ctx); err != nil {
			t.Errorf("ListPlaylists failed: %v", err)
		}
		if len(runner.closers) != 1 {
			t.Errorf("closers = %d, want 1", len(runner.closers))
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		if _, err := runner.service(ctx, "napster"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestParseSelection(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "blank", input: "", want: nil},
		{name: "single numbers", input: "1 3", want: []int{0, 2}},
		{name: "range", input: "2-4", want: []int{1, 2, 3}},
		{name: "mixed with commas", input: "1, 5-6", want: []int{0, 4, 5}},
		{name: "reversed range", input: "3-2", want: []int{1, 2}},
		{name: "out of range", input: "7", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "not a number", input: "two", wantErr: true},
		{name: "open range", input: "2-", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.input, 6)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for _, i := range tt.want {
				if !got[i] {
					t.Errorf("index %d not selected in %v", i, got)
				}
			}
		})
	}
}

func TestRoute(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		f := newFixture(t, "")
		from, to, err := f.runner.route("deezer", "spotify")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if from != services.DeezerDescriptor || to != services.SpotifyDescriptor {
			t.Errorf("route = %v -> %v", from, to)
		}
	})

	t.Run("prompts for missing services", func(t *testing.T) {
		f := newFixture(t, "9\n3\n1\n")
		from, to, err := f.runner.route("", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if from != services.DeezerDescriptor {
			t.Errorf("from = %v, want Deezer", from)
		}
		if to != services.SpotifyDescriptor {
			t.Errorf("to = %v, want Spotify", to)
		}

		output := f.output.String()
		if !strings.Contains(output, "Please enter a number between 1 and 4") {
			t.Errorf("expected a retry prompt, got:\n%s", output)
		}
		if strings.Contains(output[strings.Index(output, "Transfer to:"):], "Deezer") {
			t.Errorf("destination prompt offered Deezer:\n%s", output)
		}
	})

	t.Run("destination prompt leaves out the origin", func(t *testing.T) {
		f := newFixture(t, "1\n")
		_, to, err := f.runner.route("spotify", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if to != services.YouTubeDescriptor {
			t.Errorf("to = %v, want YouTube Music", to)
		}
	})

	t.Run("closed input", func(t *testing.T) {
		f := newFixture(t, "")
		if _, _, err := f.runner.route("", "spotify"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejects", func(t *testing.T) {
		f := newFixture(t, "")
		if _, _, err := f.runner.route("spotify", "spotify"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("same service: expected ErrInvalidArgument, got %v", err)
		}
		if _, _, err := f.runner.route("spotify", "deezer"); !errors.Is(err, shared.ErrUnsupported) {
			t.Errorf("deezer destination: expected ErrUnsupported, got %v", err)
		}
		if _, _, err := f.runner.route("napster", "spotify"); err == nil {
			t.Error("unknown origin: expected error")
		}
	})
}

func TestTransferCommand(t *testing.T) {
	t.Run("all playlists", func(t *testing.T) {
		f := newFixture(t, "")
		if err := f.run("transfer", "--from", "deezer", "--to", "spotify", "--all"); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		output := f.output.String()
		for _, want := range []string{"Deezer → Spotify", "Road Trip: 1/2 matched", "1. Unknown Song - Nobody", "Focus: 1/1 matched", "1 unmatched song(s)"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
		if n := f.destination.CallCount("CreatePlaylist"); n != 2 {
			t.Errorf("CreatePlaylist calls = %d, want 2", n)
		}
		if n := f.destination.CallCount("AddTracks"); n != 2 {
			t.Errorf("AddTracks calls = %d, want 2", n)
		}
		if n := f.destination.CallCount("LikeTracks"); n != 0 {
			t.Errorf("liked songs transferred without --liked")
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		f := newFixture(t, "")
		if err := f.run("transfer", "--from", "deezer", "--to", "spotify", "--all", "--liked", "--dry"); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if n := f.destination.MutatingCalls(); n != 0 {
			t.Errorf("mutating calls = %d, want 0", n)
		}
		if output := f.output.String(); !strings.Contains(output, "Dry run") || !strings.Contains(output, "Liked Songs: 1/1 matched") {
			t.Errorf("unexpected output:\n%s", output)
		}
	})

	t.Run("prompted exclusion", func(t *testing.T) {
		f := newFixture(t, "2\n")
		if err := f.run("transfer", "--from", "deezer", "--to", "spotify"); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		calls := f.destination.Calls()
		if n := f.destination.CallCount("CreatePlaylist"); n != 1 {
			t.Fatalf("CreatePlaylist calls = %d, want 1", n)
		}
		for _, c := range calls {
			if c.Method == "CreatePlaylist" && c.Args[0] != "Road Trip" {
				t.Errorf("created %v, want Road Trip", c.Args)
			}
		}
		if output := f.output.String(); !strings.Contains(output, "Playlists to skip") {
			t.Errorf("expected the exclusion prompt:\n%s", output)
		}
	})

	t.Run("named playlist and exclude", func(t *testing.T) {
		f := newFixture(t, "")
		if err := f.run("transfer", "--from", "deezer", "--to", "spotify", "--playlist", "focus"); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if output := f.output.String(); strings.Contains(output, "Road Trip") || !strings.Contains(output, "Focus") {
			t.Errorf("unexpected output:\n%s", output)
		}

		f = newFixture(t, "")
		if err := f.run("transfer", "--from", "deezer", "--to", "spotify", "--all", "--exclude", "p1"); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if n := f.destination.CallCount("CreatePlaylist"); n != 1 {
			t.Errorf("CreatePlaylist calls = %d, want 1", n)
		}
	})

	t.Run("unknown playlist", func(t *testing.T) {
		f := newFixture(t, "")
		err := f.run("transfer", "--from", "deezer", "--to", "spotify", "--playlist", "Nope")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if n := f.destination.MutatingCalls(); n != 0 {
			t.Errorf("mutating calls = %d, want 0", n)
		}
	})

	t.Run("nothing selected", func(t *testing.T) {
		f := newFixture(t, "1-2\n")
		if err := f.run("transfer", "--from", "deezer", "--to", "spotify"); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if !strings.Contains(f.output.String(), "Nothing to transfer.") {
			t.Errorf("unexpected output:\n%s", f.output.String())
		}
	})

	t.Run("destination not authenticated", func(t *testing.T) {
		f := newFixture(t, "")
		f.destination.UserID = ""
		err := f.run("transfer", "--from", "deezer", "--to", "spotify", "--all")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if n := f.origin.CallCount("ListPlaylists"); n != 0 {
			t.Errorf("origin was read before the destination was checked")
		}
	})

	t.Run("report", func(t *testing.T) {
		f := newFixture(t, "")
		path := filepath.Join(t.TempDir(), "report.md")
		if err := f.run("transfer", "--from", "deezer", "--to", "spotify", "--all", "--report", path); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "Unknown Song") {
			t.Errorf("report missing unmatched song:\n%s", content)
		}
	})
}

func TestBrowseCommands(t *testing.T) {
	t.Run("services", func(t *testing.T) {
		f := newFixture(t, "")
		if err := f.run("services"); err != nil {
			t.Fatalf("services failed: %v", err)
		}
		for _, d := range services.Descriptors() {
			if !strings.Contains(f.output.String(), d.Token) {
				t.Errorf("output missing %s", d.Token)
			}
		}
	})

	t.Run("playlists as JSON with tracks", func(t *testing.T) {
		f := newFixture(t, "")
		if err := f.run("playlists", "--service", "deezer", "--tracks", "--json"); err != nil {
			t.Fatalf("playlists failed: %v", err)
		}

		var got []struct {
			ID    string        `json:"id"`
			Name  string        `json:"name"`
			Songs []models.Song `json:"songs"`
		}
		if err := json.Unmarshal(f.output.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, f.output.String())
		}
		if len(got) != 2 || got[0].Name != "Road Trip" || len(got[0].Songs) != 2 {
			t.Errorf("unexpected playlists: %+v", got)
		}
	})

	t.Run("playlists table", func(t *testing.T) {
		f := newFixture(t, "")
		if err := f.run("playlists", "--service", "deezer"); err != nil {
			t.Fatalf("playlists failed: %v", err)
		}
		if output := f.output.String(); !strings.Contains(output, "Road Trip") || !strings.Contains(output, "p2") {
			t.Errorf("unexpected output:\n%s", output)
		}
	})

	t.Run("search", func(t *testing.T) {
		f := newFixture(t, "")
		if err := f.run("search", "--service", "spotify", "Yesterday", "The", "Beatles"); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		output := f.output.String()
		if !strings.Contains(output, "ratio: 100 (accepted") || !strings.Contains(output, "spotify:track:1") {
			t.Errorf("unexpected output:\n%s", output)
		}

		f = newFixture(t, "")
		if err := f.run("search", "--service", "spotify", "Nothing Here"); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(f.output.String(), "No result on Spotify") {
			t.Errorf("unexpected output:\n%s", f.output.String())
		}

		if err := f.run("search", "--service", "spotify"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSetupAndImport(t *testing.T) {
	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "library.db")
	configPath := filepath.Join(dir, "config.toml")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Config: config, ConfigPath: configPath, Output: output})
	defer runner.Close()

	t.Run("setup config", func(t *testing.T) {
		if err := runApp(runner, "setup", "config"); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, configPath)

		if err := runApp(runner, "setup", "config"); err == nil {
			t.Error("expected error when the config already exists")
		}
	})

	t.Run("setup local", func(t *testing.T) {
		if err := runApp(runner, "setup", "local"); err != nil {
			t.Fatalf("setup local failed: %v", err)
		}
		tu.AssertFileExists(t, config.Database.Path)
	})

	t.Run("local import", func(t *testing.T) {
		csvPath := filepath.Join(dir, "road-trip.csv")
		if err := os.WriteFile(csvPath, []byte("name,artist\nYesterday,The Beatles\nBohemian Rhapsody,Queen\n"), 0644); err != nil {
			t.Fatalf("failed to write CSV: %v", err)
		}

		if err := runApp(runner, "local", "import", csvPath); err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if err := runApp(runner, "local", "import", "--liked", csvPath); err != nil {
			t.Fatalf("liked import failed: %v", err)
		}

		ctx := context.Background()
		svc, err := runner.service(ctx, "local")
		if err != nil {
			t.Fatalf("failed to open library: %v", err)
		}
		playlists, err := svc.ListPlaylists(ctx)
		if err != nil {
			t.Fatalf("ListPlaylists failed: %v", err)
		}
		if len(playlists) != 1 || playlists[0].Name != "road-trip" {
			t.Fatalf("playlists = %+v, want road-trip", playlists)
		}
		songs, err := svc.ListPlaylistTracks(ctx, playlists[0].ID)
		if err != nil || len(songs) != 2 {
			t.Errorf("tracks = %v, %v; want 2 songs", songs, err)
		}
		liked, err := svc.ListLikedSongs(ctx)
		if err != nil || len(liked) != 2 {
			t.Errorf("liked = %v, %v; want 2 songs", liked, err)
		}

		if !strings.Contains(output.String(), `Imported 2 song(s) into "road-trip"`) {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("local import without a file", func(t *testing.T) {
		if err := runApp(runner, "local", "import"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestCallbackAddr(t *testing.T) {
	runner := NewRunner(RunnerOpts{})

	tc := []struct {
		redirect string
		addr     string
		path     string
	}{
		{"http://127.0.0.1:3000/callback", "127.0.0.1:3000", "/callback"},
		{"http://localhost/spotify", "localhost:3000", "/spotify"},
		{"http://127.0.0.1:8888", "127.0.0.1:8888", "/callback"},
	}
	for _, tt := range tc {
		addr, path, err := runner.callbackAddr(tt.redirect)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.redirect, err)
		}
		if addr != tt.addr || path != tt.path {
			t.Errorf("%s: got %s %s, want %s %s", tt.redirect, addr, path, tt.addr, tt.path)
		}
	}

	if _, _, err := runner.callbackAddr("not a url"); !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestReport(t *testing.T) {
	logger := shared.NewLogger(&bytes.Buffer{})
	tc := []struct {
		err  error
		code int
	}{
		{context.Canceled, 130},
		{shared.ErrNotAuthenticated, 2},
		{shared.ErrMissingCredentials, 2},
		{shared.ErrMissingArgument, 64},
		{errors.New("boom"), 1},
	}
	for _, tt := range tc {
		if got := report(logger, tt.err); got != tt.code {
			t.Errorf("report(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}
}
