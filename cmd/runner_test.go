package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
	tu "github.com/desertthunder/spt/internal/testing"
)

func windowlicker() *models.Playback {
	track := models.Track{
		ID:         "t1",
		Name:       "Windowlicker",
		URI:        "spotify:track:t1",
		DurationMs: 200000,
		Artists:    []models.SimplifiedArtist{{Name: "Aphex Twin"}},
		Album:      models.SimplifiedAlbum{ID: "a1", Name: "Windowlicker EP"},
	}
	return &models.Playback{
		Device:     models.Device{ID: "dev-1", Name: "Desk", VolumePercent: 50},
		ProgressMs: 30000,
		IsPlaying:  true,
		Item:       &models.PlayableItem{Track: &track},
	}
}

func testConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Player.CacheTracks = false
	config.Player.SeekDelayMS = 0
	return config
}

// newTestRunner returns a runner backed by a fake client and a config file in a temp dir.
func newTestRunner(t *testing.T) (*Runner, *tu.FakeClient, *bytes.Buffer) {
	t.Helper()
	client := tu.NewFakeClient()
	client.PlaybackState = windowlicker()
	output := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		Config:     testConfig(),
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Client:     client,
		Logger:     shared.NewLogger(&bytes.Buffer{}),
		Output:     output,
	})
	return runner, client, output
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return newApp(r).Run(context.Background(), append([]string{"spt"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			client := tu.NewFakeClient()

			runner := NewRunner(RunnerOpts{
				Config: config,
				Client: client,
				Logger: logger,
				Output: output,
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
			if runner.client != client {
				t.Error("expected client to be set")
			}
		})

		t.Run("with defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger")
			}
			if runner.output != os.Stdout {
				t.Error("expected stdout as default output")
			}
			if runner.engine != nil {
				t.Error("expected engine to be built lazily")
			}
		})
	})

	t.Run("ready", func(t *testing.T) {
		t.Run("requires a client", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: testConfig(), Logger: shared.NewLogger(&bytes.Buffer{})})

			_, err := runner.ready(context.Background(), nil)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("seeds device from config", func(t *testing.T) {
			runner, _, _ := newTestRunner(t)
			runner.config.Player.DeviceID = "dev-9"

			engine, err := runner.ready(context.Background(), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := engine.Store().DeviceID(); got != "dev-9" {
				t.Errorf("expected device dev-9, got %s", got)
			}
		})
	})
}

func TestResolveDevice(t *testing.T) {
	devices := []models.Device{
		{ID: "dev-1", Name: "Desk"},
		{ID: "dev-2", Name: "Kitchen Speaker"},
	}

	tests := []struct {
		name    string
		query   string
		devices []models.Device
		want    string
		wantErr bool
	}{
		{name: "exact match", query: "Desk", devices: devices, want: "dev-1"},
		{name: "fuzzy match", query: "kitch", devices: devices, want: "dev-2"},
		{name: "no match", query: "zzz", devices: devices, wantErr: true},
		{name: "no devices", query: "Desk", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := resolveDevice(tt.query, tt.devices)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrNoDevice) {
					t.Errorf("expected ErrNoDevice, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.ID != tt.want {
				t.Errorf("expected %s, got %s", tt.want, d.ID)
			}
		})
	}
}

func TestPlaybackCommand(t *testing.T) {
	t.Run("prints status", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := run(t, runner, "playback", "--status", "--format", "%t - %a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := output.String(); got != "Windowlicker - Aphex Twin\n" {
			t.Errorf("expected status line, got %q", got)
		}
	})

	t.Run("fails without playback", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)
		client.PlaybackState = nil

		err := run(t, runner, "playback", "--status")
		if !errors.Is(err, shared.ErrNoPlayback) {
			t.Errorf("expected ErrNoPlayback, got %v", err)
		}
	})

	t.Run("likes the current track", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)

		if err := run(t, runner, "playback", "--like"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Calls("SaveTracks") != 1 {
			t.Errorf("expected one SaveTracks call, got %v", client.CallLog())
		}
		if !client.Liked["t1"] {
			t.Error("expected t1 to be liked")
		}
	})

	t.Run("like and seek without playback record the error", func(t *testing.T) {
		for _, args := range [][]string{{"--like"}, {"--dislike"}, {"--seek", "+10"}} {
			runner, client, _ := newTestRunner(t)
			client.PlaybackState = nil

			err := run(t, runner, append([]string{"playback"}, args...)...)
			if !errors.Is(err, shared.ErrNoPlayback) {
				t.Errorf("%v: expected ErrNoPlayback, got %v", args, err)
			}
			if last := runner.engine.Store().LastError(); !errors.Is(last, shared.ErrNoPlayback) {
				t.Errorf("%v: expected ErrNoPlayback as last error, got %v", args, last)
			}
			if got := client.CallLog(); len(got) != 1 || got[0] != "CurrentPlayback" {
				t.Errorf("%v: expected only the playback fetch, got %v", args, got)
			}
		}
	})

	t.Run("sets volume", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)

		if err := run(t, runner, "playback", "--volume", "30"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Volumes) != 1 || client.Volumes[0] != 30 {
			t.Errorf("expected volumes [30], got %v", client.Volumes)
		}
	})

	t.Run("rejects invalid volume", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)

		err := run(t, runner, "playback", "--volume", "150")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if client.Calls("SetVolume") != 0 {
			t.Error("expected no volume change")
		}
	})

	t.Run("seeks relative to position", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)

		if err := run(t, runner, "playback", "--seek", "+10"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Seeks) != 1 || client.Seeks[0] != 40000 {
			t.Errorf("expected seeks [40000], got %v", client.Seeks)
		}
	})

	t.Run("transfers to a named device", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)
		client.DeviceList = []models.Device{{ID: "dev-2", Name: "Kitchen"}}

		if err := run(t, runner, "playback", "--transfer", "Kitchen"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Transfers) != 1 || client.Transfers[0] != "dev-2" {
			t.Errorf("expected transfer to dev-2, got %v", client.Transfers)
		}
		if runner.config.Player.DeviceID != "dev-2" {
			t.Errorf("expected device to be persisted, got %s", runner.config.Player.DeviceID)
		}
		if route := runner.engine.Store().Route(); route.ID != state.RouteHome {
			t.Errorf("expected home route, got %s", route.ID)
		}
	})

	t.Run("shares the track", func(t *testing.T) {
		runner, client, output := newTestRunner(t)

		if err := run(t, runner, "playback", "--share-track"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(output.String()); got != "https://open.spotify.com/track/t1" {
			t.Errorf("expected track url, got %q", got)
		}
		if client.Calls("Pause") != 0 || client.Calls("StartPlayback") != 0 {
			t.Error("expected sharing to leave playback alone")
		}
	})
}

func TestShareURL(t *testing.T) {
	t.Run("album of the current track", func(t *testing.T) {
		store := state.NewStore(state.SearchLimits{Small: 4, Large: 20})
		store.Update(func(s *state.State) { s.Playback = windowlicker() })

		url, err := shareURL(store, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url != "https://open.spotify.com/album/a1" {
			t.Errorf("expected album url, got %s", url)
		}
	})

	t.Run("nothing playing", func(t *testing.T) {
		store := state.NewStore(state.SearchLimits{Small: 4, Large: 20})

		if _, err := shareURL(store, false); !errors.Is(err, shared.ErrNoPlayback) {
			t.Errorf("expected ErrNoPlayback, got %v", err)
		}
	})
}

func TestPlayCommand(t *testing.T) {
	t.Run("plays a track uri", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)

		if err := run(t, runner, "play", "--uri", "spotify:track:t1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Started) != 1 || len(client.Started[0].URIs) != 1 || client.Started[0].URIs[0] != "spotify:track:t1" {
			t.Errorf("expected track to start, got %+v", client.Started)
		}
	})

	t.Run("plays a context uri", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)

		if err := run(t, runner, "play", "--uri", "spotify:album:a1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Started) != 1 || client.Started[0].ContextURI != "spotify:album:a1" {
			t.Errorf("expected album context, got %+v", client.Started)
		}
	})

	t.Run("queues", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)

		if err := run(t, runner, "play", "--uri", "spotify:track:t1", "--queue"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Queued) != 1 || client.Queued[0] != "spotify:track:t1" {
			t.Errorf("expected queued track, got %v", client.Queued)
		}
		if client.Calls("StartPlayback") != 0 {
			t.Error("expected queue not to start playback")
		}
	})

	t.Run("reports queue failure", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)
		client.Fail("AddToQueue", errors.New("restricted device"))

		err := run(t, runner, "play", "--uri", "spotify:track:t1", "--queue")
		if err == nil || !strings.Contains(err.Error(), "restricted device") {
			t.Errorf("expected queue error, got %v", err)
		}
	})

	t.Run("rejects malformed uri", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := run(t, runner, "play", "--uri", "not-a-uri")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("plays the first search hit", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)
		client.Results.Albums = models.Page[models.SimplifiedAlbum]{
			Items: []models.SimplifiedAlbum{{ID: "a1", Name: "Drukqs"}},
			Total: 1,
		}

		if err := run(t, runner, "play", "--name", "drukqs", "--album"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Started) != 1 || client.Started[0].ContextURI != "spotify:album:a1" {
			t.Errorf("expected album context, got %+v", client.Started)
		}
	})

	t.Run("requires a kind with name", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := run(t, runner, "play", "--name", "drukqs")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("random playlist offset", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)
		client.PlaylistItems = models.Page[models.PlaylistItem]{Total: 12}

		if err := run(t, runner, "play", "--uri", "spotify:playlist:p1", "--random"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Started) != 1 || client.Started[0].Offset == nil {
			t.Fatalf("expected offset, got %+v", client.Started)
		}
		if pos := client.Started[0].Offset.Position; pos < 0 || pos >= 12 {
			t.Errorf("expected offset in [0, 12), got %d", pos)
		}
	})

	t.Run("random from an empty playlist records the error", func(t *testing.T) {
		runner, client, _ := newTestRunner(t)

		err := run(t, runner, "play", "--uri", "spotify:playlist:p1", "--random")
		if !errors.Is(err, shared.ErrEmptyCollection) {
			t.Fatalf("expected ErrEmptyCollection, got %v", err)
		}
		if last := runner.engine.Store().LastError(); !errors.Is(last, shared.ErrEmptyCollection) {
			t.Errorf("expected ErrEmptyCollection as last error, got %v", last)
		}
		if client.Calls("StartPlayback") != 0 {
			t.Errorf("expected no playback start, got %v", client.CallLog())
		}
	})
}

func TestListCommand(t *testing.T) {
	t.Run("no playlists", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := run(t, runner, "list", "--playlists"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := output.String(); got != "No playlists found\n" {
			t.Errorf("expected empty message, got %q", got)
		}
	})

	t.Run("devices", func(t *testing.T) {
		runner, client, output := newTestRunner(t)
		client.DeviceList = []models.Device{{ID: "dev-1", Name: "Desk", VolumePercent: 40}}

		if err := run(t, runner, "list", "--devices"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := output.String(); got != "40% Desk\n" {
			t.Errorf("expected device line, got %q", got)
		}
	})

	t.Run("liked songs as csv", func(t *testing.T) {
		runner, client, output := newTestRunner(t)
		client.SavedTrackPage = models.Page[models.SavedTrack]{
			Items: []models.SavedTrack{{Track: *windowlicker().Item.Track}},
			Total: 1,
		}

		if err := run(t, runner, "list", "--liked", "--csv"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one row, got %q", output.String())
		}
		if lines[0] != "URI,Track,Artist,Album,Duration" {
			t.Errorf("expected csv header, got %q", lines[0])
		}
		if want := "spotify:track:t1,Windowlicker,Aphex Twin,Windowlicker EP,200"; lines[1] != want {
			t.Errorf("expected %q, got %q", want, lines[1])
		}
	})

	t.Run("requires a target", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		if err := run(t, runner, "list"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejects invalid limit", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		if err := run(t, runner, "list", "--playlists", "--limit", "80"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSearchCommand(t *testing.T) {
	t.Run("prints tracks", func(t *testing.T) {
		runner, client, output := newTestRunner(t)
		client.Results.Tracks = models.Page[models.Track]{
			Items: []models.Track{*windowlicker().Item.Track},
			Total: 1,
		}

		if err := run(t, runner, "search", "--tracks", "windowlicker"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "Windowlicker - Aphex Twin (spotify:track:t1)\n"; output.String() != want {
			t.Errorf("expected %q, got %q", want, output.String())
		}
	})

	t.Run("no results", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := run(t, runner, "search", "--artists", "nobody"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "no artists with name 'nobody'\n"; output.String() != want {
			t.Errorf("expected %q, got %q", want, output.String())
		}
	})

	t.Run("requires a term", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		if err := run(t, runner, "search", "--tracks"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestGlobalDeviceFlag(t *testing.T) {
	runner, client, _ := newTestRunner(t)
	client.DeviceList = []models.Device{
		{ID: "dev-1", Name: "Desk"},
		{ID: "dev-2", Name: "Kitchen"},
	}

	if err := run(t, runner, "--device", "Kitchen", "playback", "--toggle"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := client.DeviceIDs
	if len(ids) == 0 || ids[0] != "dev-2" {
		t.Errorf("expected commands to target dev-2, got %v", ids)
	}
	if _, err := os.Stat(runner.configPath); err != nil {
		t.Errorf("expected config to be saved: %v", err)
	}
}

func TestCacheCommand(t *testing.T) {
	runner, _, output := newTestRunner(t)
	runner.config.Player.CacheTracks = true
	runner.config.Database.Path = filepath.Join(t.TempDir(), "spt.db")
	t.Cleanup(func() { runner.Close() })

	// status fetches the playback before and after applying flags
	if err := run(t, runner, "playback", "--status"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.tracks == nil {
		t.Fatal("expected track cache to be opened")
	}

	t.Run("list", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "cache", "list", "--format", "%t - %a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := output.String()
		if !strings.HasPrefix(got, "Windowlicker - Aphex Twin") || !strings.Contains(got, "2 plays") {
			t.Errorf("expected cached track, got %q", got)
		}
	})

	t.Run("stats", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "cache", "stats"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Tracks:    1") {
			t.Errorf("expected one cached track, got %q", output.String())
		}
	})

	t.Run("rejects unknown order", func(t *testing.T) {
		err := run(t, runner, "cache", "list", "--order", "random")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "cache", "clear"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := output.String(); got != "✓ Removed 1 cached tracks\n" {
			t.Errorf("expected purge message, got %q", got)
		}
	})
}
