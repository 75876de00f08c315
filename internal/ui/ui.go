package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/desertthunder/spt/internal/formatter"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
	"github.com/desertthunder/spt/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	NowPlayingView ViewState = iota
	DeviceListView
)

const defaultBarWidth = 40

// Options tune rendering and the step of relative key commands.
type Options struct {
	Format     string
	Icons      formatter.Icons
	Tick       time.Duration
	VolumeStep int
	SeekStep   int // seconds
}

// OptionsFrom reads the player and behavior sections of cfg.
func OptionsFrom(cfg *shared.Config) Options {
	return Options{
		Format:     cfg.Player.Format,
		Icons:      formatter.IconsFrom(cfg.Behavior),
		Tick:       cfg.Player.Tick(),
		VolumeStep: cfg.Player.VolumeStep,
		SeekStep:   cfg.Player.SeekStep,
	}
}

// Model represents the TUI application state.
//
// Everything it renders is read from the engine's store; it only keeps view-local state.
type Model struct {
	ctx     context.Context
	view    ViewState
	engine  *tasks.Engine
	store   *state.Store
	updates <-chan tasks.Update
	opts    Options
	width   int
	height  int
	devices list.Model
	pending string
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model. updates may be nil; when set it should be the channel
// given to the engine in [tasks.EngineOpts].
func NewModel(ctx context.Context, engine *tasks.Engine, updates <-chan tasks.Update, opts Options) *Model {
	if opts.Format == "" {
		opts.Format = "%f %s %t - %a"
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = 10
	}
	if opts.SeekStep <= 0 {
		opts.SeekStep = 5
	}

	devices := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	devices.Title = "Devices"
	devices.SetShowHelp(false)

	return &Model{
		ctx:     ctx,
		view:    NowPlayingView,
		engine:  engine,
		store:   engine.Store(),
		updates: updates,
		opts:    opts,
		devices: devices,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init fetches the playback and starts polling.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.run(tasks.FetchPlayback{}), m.tick(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.devices.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case DeviceListView:
			return m.handleDeviceKeys(msg)
		default:
			return m.handlePlayerKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == DeviceListView {
		var cmd tea.Cmd
		m.devices, cmd = m.devices.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTick:
		if m.store.IsLoading() {
			return m, m.tick()
		}
		return m, tea.Batch(m.run(tasks.FetchPlayback{}), m.tick())

	case MsgIntentDone:
		res := msg.data.(intentResult)
		m.err = res.err
		if res.err != nil {
			return m, nil
		}
		switch res.intent.(type) {
		case tasks.FetchDevices:
			snap := m.store.Snapshot()
			cmd := m.devices.SetItems(deviceItems(snap.Devices))
			m.devices.Select(snap.SelectedDevice)
			m.view = DeviceListView
			return m, cmd
		case tasks.TransferPlayback:
			m.view = NowPlayingView
		}
		return m, nil

	case MsgLifecycle:
		u := msg.data.(tasks.Update)
		switch {
		case u.Phase == tasks.Started:
			m.pending = u.Intent
		case u.Intent == m.pending:
			m.pending = ""
		}
		return m, m.waitForUpdate()
	}
	return m, nil
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.run(tasks.TogglePlayback{})
	case key.Matches(msg, m.keys.next):
		return m, m.run(tasks.NextTrack{})
	case key.Matches(msg, m.keys.previous):
		return m, m.run(tasks.PreviousTrack{})
	case key.Matches(msg, m.keys.louder):
		return m, m.run(tasks.StepVolume{Delta: m.opts.VolumeStep})
	case key.Matches(msg, m.keys.quieter):
		return m, m.run(tasks.StepVolume{Delta: -m.opts.VolumeStep})
	case key.Matches(msg, m.keys.forward):
		return m, m.run(tasks.SeekRelative{Raw: fmt.Sprintf("+%d", m.opts.SeekStep)})
	case key.Matches(msg, m.keys.rewind):
		return m, m.run(tasks.SeekRelative{Raw: fmt.Sprintf("-%d", m.opts.SeekStep)})
	case key.Matches(msg, m.keys.shuffle):
		return m, m.run(tasks.ToggleShuffle{})
	case key.Matches(msg, m.keys.repeat):
		return m, m.run(tasks.CycleRepeat{})
	case key.Matches(msg, m.keys.like):
		return m, m.run(tasks.ToggleLikeCurrent{})
	case key.Matches(msg, m.keys.devices):
		return m, m.run(tasks.FetchDevices{})
	}
	return m, nil
}

func (m *Model) handleDeviceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.devices.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.devices, cmd = m.devices.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = NowPlayingView
		return m, m.run(tasks.PopRoute{ID: state.RouteSelectDevice})
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.devices.SelectedItem().(deviceItem); ok {
			return m, m.run(tasks.TransferPlayback{DeviceID: item.device.ID})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.devices, cmd = m.devices.Update(msg)
	return m, cmd
}

// run executes in on the engine and reports the outcome as [MsgIntentDone].
func (m *Model) run(in tasks.Intent) tea.Cmd {
	return func() tea.Msg {
		return intentDoneMsg(in, m.engine.Execute(m.ctx, in))
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return nil
		}
		return lifecycleMsg(u)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DeviceListView:
		return m.renderDevices()
	default:
		return m.renderNowPlaying()
	}
}

func (m *Model) renderNowPlaying() string {
	snap := m.store.Snapshot()
	title := styles.title.Render("spt")

	var body string
	if snap.Playback == nil || snap.Playback.Item == nil {
		body = styles.help.Render("Nothing is playing")
	} else {
		pb := *snap.Playback
		liked := pb.Item.Track != nil && snap.LikedTracks.Contains(pb.Item.Track.ID)
		line := formatter.Render(m.opts.Format, formatter.FromPlayback(pb, liked), m.opts.Icons)
		device := formatter.Render("%d • %v%", formatter.FromDevice(pb.Device), m.opts.Icons)
		body = strings.Join([]string{
			styles.ok.Render(m.fit(line)),
			m.progressBar(pb.Progress(), pb.Item.Duration()),
			styles.help.Render(m.fit(device)),
		}, "\n")
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s", title, body, m.status(), m.help.View(m.keys))
}

func (m *Model) renderDevices() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s\n%s", m.devices.View(), m.status(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) status() string {
	switch {
	case m.err != nil:
		return styles.err.Render(m.fit("Error: " + m.err.Error()))
	case m.pending != "":
		return styles.warn.Render(m.pending + "…")
	default:
		return ""
	}
}

func (m *Model) progressBar(elapsed, total time.Duration) string {
	clock := formatter.Progress(elapsed, total)
	width := defaultBarWidth
	if m.width > 0 {
		width = max(m.width-runewidth.StringWidth(clock)-1, 0)
	}

	filled := 0
	if total > 0 {
		filled = min(int(float64(width)*float64(elapsed)/float64(total)), width)
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
	return styles.bar.Render(bar) + " " + clock
}

// fit truncates s to the terminal width, counting wide runes as two cells.
func (m *Model) fit(s string) string {
	if m.width <= 0 {
		return s
	}
	return runewidth.Truncate(s, m.width, "…")
}
