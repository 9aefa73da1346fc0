package ui

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/jscyril/mp3deck/api"
	"github.com/jscyril/mp3deck/internal/config"
	"github.com/jscyril/mp3deck/internal/player"
	"github.com/jscyril/mp3deck/internal/ui/components"
	"github.com/jscyril/mp3deck/internal/ui/views"
	"github.com/jscyril/mp3deck/pkg/events"
)

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	// Views
	playerView views.PlayerView
	picker     components.FileBrowser
	browsing   bool
	pickerDir  string

	// Components
	ctrl   *player.Controller
	events <-chan api.PlayerEvent
	cfg    *config.Config
	keys   KeyMap
	logger *log.Logger

	// State
	ctx    context.Context
	cancel context.CancelFunc
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// StateUpdateMsg is sent when playback state changes
type StateUpdateMsg struct {
	State api.State
}

// ConfigReloadedMsg carries a config file that changed on disk
type ConfigReloadedMsg struct {
	Config *config.Config
}

// NewModel creates a new application model. bus may be nil, in which case
// the view refreshes on ticks and key presses only.
func NewModel(ctrl *player.Controller, bus *events.EventBus, cfg *config.Config, logger *log.Logger) Model {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = log.Default()
	}

	m := Model{
		width:     cfg.Window.Width,
		height:    cfg.Window.Height,
		ctrl:      ctrl,
		cfg:       cfg,
		keys:      NewKeyMap(cfg.KeyBindings),
		logger:    logger,
		pickerDir: cfg.StartDir,
		ctx:       ctx,
		cancel:    cancel,
	}
	if bus != nil {
		m.events = bus.SubscribeAll()
	}

	m.playerView = views.NewPlayerView(cfg.Window.Title, m.width, m.height, cfg.VolumeStep)
	m.playerView.SetState(ctrl.State())

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(m.cfg.Window.Title),
		tickCmd(),
		m.listenForEvents(),
	)
}

// tickCmd returns a command that ticks every 500ms
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// listenForEvents returns a command that waits for the next controller event
func (m Model) listenForEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case event, ok := <-m.events:
			if !ok {
				return nil
			}
			return StateUpdateMsg{State: event.State}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width, m.cfg.Window.Width)
		m.height = msg.Height
		m.playerView.SetWidth(m.width)
		m.picker.Width = msg.Width
		m.picker.Height = msg.Height

	case TickMsg:
		m.ctrl.Sync()
		m.refresh()
		cmds = append(cmds, tickCmd())

	case StateUpdateMsg:
		m.playerView.SetState(msg.State)
		cmds = append(cmds, m.listenForEvents())

	case ConfigReloadedMsg:
		m.applyConfig(msg.Config)

	case components.FilePickedMsg:
		m.browsing = false
		if msg.Path != "" {
			m.pickerDir = filepath.Dir(msg.Path)
			if err := m.ctrl.Load(msg.Path); err != nil {
				m.logger.Warn("open failed", "path", msg.Path, "err", err)
			}
		}
		m.refresh()

	case tea.KeyMsg:
		// The picker owns the keyboard while it is open
		if m.browsing {
			if msg.String() == "ctrl+c" {
				return m.quit()
			}
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Open):
		m.picker = components.NewFileBrowser(m.pickerDir, m.width, m.height)
		m.browsing = true
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		m.ctrl.TogglePlayPause()

	case key.Matches(msg, m.keys.Stop):
		m.ctrl.Stop()

	case key.Matches(msg, m.keys.Loop):
		m.ctrl.ToggleLoop()

	case key.Matches(msg, m.keys.VolumeUp):
		m.ctrl.SetVolume(m.playerView.Volume.Increment())

	case key.Matches(msg, m.keys.VolumeDown):
		m.ctrl.SetVolume(m.playerView.Volume.Decrement())

	case key.Matches(msg, m.keys.SeekStart):
		m.ctrl.SeekToStart()

	case key.Matches(msg, m.keys.SeekFive):
		m.ctrl.SeekForwardFiveSeconds()

	case key.Matches(msg, m.keys.SeekForward):
		m.ctrl.SeekBy(m.cfg.SeekStep)

	case key.Matches(msg, m.keys.SeekBack):
		m.ctrl.SeekBy(-m.cfg.SeekStep)

	case key.Matches(msg, m.keys.Help):
		m.playerView.Help.ShowAll = !m.playerView.Help.ShowAll
	}

	m.refresh()
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

// refresh pulls a fresh snapshot from the controller
func (m *Model) refresh() {
	m.playerView.SetState(m.ctrl.State())
}

// applyConfig takes the settings that can change while running
func (m *Model) applyConfig(cfg *config.Config) {
	m.cfg.VolumeStep = cfg.VolumeStep
	m.cfg.SeekStep = cfg.SeekStep
	m.cfg.KeyBindings = cfg.KeyBindings
	m.keys = NewKeyMap(cfg.KeyBindings)
	m.playerView.Volume.Step = cfg.VolumeStep
	m.logger.Info("config reloaded", "volume_step", cfg.VolumeStep, "seek_step", cfg.SeekStep)
}

// Browsing reports whether the file picker is open
func (m Model) Browsing() bool {
	return m.browsing
}

// View renders the UI
func (m Model) View() string {
	if m.browsing {
		return m.picker.View()
	}
	return m.playerView.View(m.keys)
}

// NewProgram wraps the model in a full screen bubbletea program
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}
