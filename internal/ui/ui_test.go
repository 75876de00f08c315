package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
	"github.com/desertthunder/spt/internal/tasks"
	th "github.com/desertthunder/spt/internal/testing"
)

func nowPlaying() *models.Playback {
	track := models.Track{
		ID:         "t1",
		Name:       "Windowlicker",
		URI:        "spotify:track:t1",
		DurationMs: 200000,
		Artists:    []models.SimplifiedArtist{{Name: "Aphex Twin"}},
	}
	return &models.Playback{
		Device:     models.Device{ID: "dev-1", Name: "Desk", VolumePercent: 50},
		ProgressMs: 30000,
		IsPlaying:  true,
		Item:       &models.PlayableItem{Track: &track},
	}
}

func newModel(t *testing.T, pb *models.Playback) (*Model, *th.FakeClient) {
	t.Helper()
	client := th.NewFakeClient()
	client.PlaybackState = pb
	store := state.NewStore(state.SearchLimits{Small: 4, Large: 20})
	if pb != nil {
		seeded := *pb
		store.Update(func(s *state.State) { s.Playback = &seeded })
	}
	engine := tasks.NewEngine(client, store, tasks.EngineOpts{Logger: shared.NewLogger(io.Discard)})
	return NewModel(context.Background(), engine, nil, Options{Format: "%s %t - %a", SeekStep: 5, VolumeStep: 10}), client
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends k and feeds the resulting intent outcome back into the model.
func press(t *testing.T, m *Model, k tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(k)
	if cmd == nil {
		return
	}
	msg := cmd()
	if _, ok := msg.(Msg); !ok {
		return
	}
	m.Update(msg)
}

func TestPlayerKeys(t *testing.T) {
	tests := []struct {
		name   string
		key    tea.KeyMsg
		method string
	}{
		{"space pauses", tea.KeyMsg{Type: tea.KeySpace}, "Pause"},
		{"n skips", runes("n"), "Next"},
		{"p goes back", runes("p"), "Previous"},
		{"s toggles shuffle", runes("s"), "SetShuffle"},
		{"r cycles repeat", runes("r"), "SetRepeat"},
		{"right seeks", tea.KeyMsg{Type: tea.KeyRight}, "Seek"},
		{"l likes", runes("l"), "SaveTracks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, client := newModel(t, nowPlaying())
			press(t, m, tt.key)

			if got := client.Calls(tt.method); got != 1 {
				t.Errorf("expected 1 call to %s, got %d (%v)", tt.method, got, client.CallLog())
			}
			if m.err != nil {
				t.Errorf("expected no error, got %v", m.err)
			}
		})
	}
}

func TestVolumeKeys(t *testing.T) {
	t.Run("steps up and down", func(t *testing.T) {
		m, client := newModel(t, nowPlaying())
		press(t, m, runes("+"))
		press(t, m, runes("-"))

		if len(client.Volumes) != 2 || client.Volumes[0] != 60 || client.Volumes[1] != 50 {
			t.Errorf("expected volumes [60 50], got %v", client.Volumes)
		}
	})

	t.Run("clamps at 100", func(t *testing.T) {
		pb := nowPlaying()
		pb.Device.VolumePercent = 95
		m, client := newModel(t, pb)
		press(t, m, runes("+"))

		if len(client.Volumes) != 1 || client.Volumes[0] != 100 {
			t.Errorf("expected volumes [100], got %v", client.Volumes)
		}
	})

	t.Run("requires playback", func(t *testing.T) {
		m, client := newModel(t, nil)
		press(t, m, runes("+"))

		if !errors.Is(m.err, shared.ErrNoPlayback) {
			t.Errorf("expected ErrNoPlayback, got %v", m.err)
		}
		if err := m.store.LastError(); !errors.Is(err, shared.ErrNoPlayback) {
			t.Errorf("expected ErrNoPlayback as last error, got %v", err)
		}
		if client.TotalCalls() != 0 {
			t.Errorf("expected no remote calls, got %v", client.CallLog())
		}
	})
}

func TestKeysWithoutPlayback(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"seek forward", tea.KeyMsg{Type: tea.KeyRight}},
		{"seek back", tea.KeyMsg{Type: tea.KeyLeft}},
		{"like", runes("l")},
		{"volume down", runes("-")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, client := newModel(t, nil)
			press(t, m, tt.key)

			if err := m.store.LastError(); !errors.Is(err, shared.ErrNoPlayback) {
				t.Errorf("expected ErrNoPlayback as last error, got %v", err)
			}
			if !errors.Is(m.err, shared.ErrNoPlayback) {
				t.Errorf("expected ErrNoPlayback, got %v", m.err)
			}
			if client.TotalCalls() != 0 {
				t.Errorf("expected no remote calls, got %v", client.CallLog())
			}
		})
	}
}

func TestSeekKeys(t *testing.T) {
	t.Run("moves by seek step", func(t *testing.T) {
		m, client := newModel(t, nowPlaying())
		press(t, m, tea.KeyMsg{Type: tea.KeyRight})
		press(t, m, tea.KeyMsg{Type: tea.KeyLeft})

		if len(client.Seeks) != 2 || client.Seeks[0] != 35000 || client.Seeks[1] != 25000 {
			t.Errorf("expected seeks [35000 25000], got %v", client.Seeks)
		}
	})

	t.Run("skips past the end", func(t *testing.T) {
		m, client := newModel(t, nowPlaying())
		m.opts.SeekStep = 500
		press(t, m, tea.KeyMsg{Type: tea.KeyRight})

		if client.Calls("Seek") != 0 {
			t.Errorf("expected no seek, got %v", client.Seeks)
		}
		if client.Calls("Next") != 1 {
			t.Errorf("expected skip to next, got %v", client.CallLog())
		}
	})
}

func TestDeviceList(t *testing.T) {
	devices := []models.Device{
		{ID: "dev-1", Name: "Desk", Type: "Computer", IsActive: true, VolumePercent: 50},
		{ID: "dev-2", Name: "Kitchen", Type: "Speaker", VolumePercent: 20},
	}

	t.Run("opens and transfers", func(t *testing.T) {
		m, client := newModel(t, nowPlaying())
		client.DeviceList = devices
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

		press(t, m, runes("d"))
		if m.view != DeviceListView {
			t.Fatalf("expected device list view, got %d", m.view)
		}
		if got := len(m.devices.Items()); got != 2 {
			t.Fatalf("expected 2 devices, got %d", got)
		}

		m.devices.Select(1)
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if len(client.Transfers) != 1 || client.Transfers[0] != "dev-2" {
			t.Errorf("expected transfer to dev-2, got %v", client.Transfers)
		}
		if m.view != NowPlayingView {
			t.Errorf("expected now playing view, got %d", m.view)
		}
		if route := m.store.Route(); route.ID != state.RouteHome {
			t.Errorf("expected home route, got %s", route.ID)
		}
	})

	t.Run("esc pops the route", func(t *testing.T) {
		m, client := newModel(t, nowPlaying())
		client.DeviceList = devices

		press(t, m, runes("d"))
		press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

		if m.view != NowPlayingView {
			t.Errorf("expected now playing view, got %d", m.view)
		}
		if route := m.store.Route(); route.ID != state.RouteHome {
			t.Errorf("expected home route, got %s", route.ID)
		}
		if client.Calls("TransferPlayback") != 0 {
			t.Error("expected no transfer")
		}
		if err := m.store.LastError(); err != nil {
			t.Errorf("expected no last error, got %v", err)
		}
	})

	t.Run("renders devices", func(t *testing.T) {
		item := deviceItem{device: devices[0]}
		if item.Title() != "Desk" {
			t.Errorf("expected title Desk, got %s", item.Title())
		}
		if want := "Computer • 50% • active"; item.Description() != want {
			t.Errorf("expected %q, got %q", want, item.Description())
		}
	})
}

func TestView(t *testing.T) {
	t.Run("renders playback", func(t *testing.T) {
		m, _ := newModel(t, nowPlaying())
		out := m.View()

		for _, want := range []string{"Windowlicker - Aphex Twin", "Desk • 50%", "0:30/3:20"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in view, got %s", want, out)
			}
		}
	})

	t.Run("renders empty player", func(t *testing.T) {
		m, _ := newModel(t, nil)
		if out := m.View(); !strings.Contains(out, "Nothing is playing") {
			t.Errorf("expected empty player message, got %s", out)
		}
	})

	t.Run("renders failure", func(t *testing.T) {
		m, client := newModel(t, nowPlaying())
		client.Fail("Pause", errors.New("restricted device"))
		press(t, m, tea.KeyMsg{Type: tea.KeySpace})

		if out := m.View(); !strings.Contains(out, "restricted device") {
			t.Errorf("expected error in view, got %s", out)
		}
	})

	t.Run("truncates to width", func(t *testing.T) {
		m, _ := newModel(t, nil)
		m.Update(tea.WindowSizeMsg{Width: 12, Height: 20})
		m.err = errors.New("a very long failure message")

		if got := m.fit("Error: " + m.err.Error()); !strings.HasSuffix(got, "…") || len([]rune(got)) > 12 {
			t.Errorf("expected truncated line, got %q", got)
		}
	})
}

func TestLifecycle(t *testing.T) {
	m, _ := newModel(t, nowPlaying())

	m.Update(lifecycleMsg(tasks.Update{Phase: tasks.Started, Intent: "Pause"}))
	if !strings.Contains(m.View(), "Pause…") {
		t.Errorf("expected pending indicator, got %s", m.View())
	}

	m.Update(lifecycleMsg(tasks.Update{Phase: tasks.Succeeded, Intent: "Pause"}))
	if m.pending != "" {
		t.Errorf("expected pending cleared, got %s", m.pending)
	}
}

func TestOptionsFrom(t *testing.T) {
	cfg := shared.DefaultConfig()
	opts := OptionsFrom(cfg)

	if opts.Format != cfg.Player.Format {
		t.Errorf("expected format %s, got %s", cfg.Player.Format, opts.Format)
	}
	if opts.Icons.Playing != cfg.Behavior.PlayingIcon {
		t.Errorf("expected playing icon %s, got %s", cfg.Behavior.PlayingIcon, opts.Icons.Playing)
	}
	if opts.Tick != cfg.Player.Tick() {
		t.Errorf("expected tick %s, got %s", cfg.Player.Tick(), opts.Tick)
	}
}
