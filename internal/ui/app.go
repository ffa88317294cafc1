package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/fars/internal/config"
	"github.com/five82/fars/internal/fars"
	"github.com/five82/fars/internal/prefs"
	"github.com/five82/fars/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewBookings View = iota
	ViewBookables
	ViewAccess
	ViewLogs
)

var viewOrder = []View{ViewBookings, ViewBookables, ViewAccess, ViewLogs}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    fars.BookingFetcher
	Store     *state.Store
	Config    *config.Config
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
	Days      int    // window used until the user changes it
	Refresh   func() // asks the poller for an immediate fetch
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	client    fars.BookingFetcher
	store     *state.Store
	config    *config.Config
	prefsPath string
	pollTick  time.Duration
	refresh   func()
	logger    *slog.Logger
	now       func() time.Time

	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	days        int
	snapshot    state.Snapshot
	lastUpdated time.Time

	selectedRow      int // index into sortBookings(snapshot.Bookings)
	selectedBookable int

	slots  remoteList[fars.Timeslot]
	access remoteList[fars.GKey]

	logViewport viewport.Model
	logState    logState
}

// remoteList tracks a per-bookable fetch issued from the UI.
type remoteList[T any] struct {
	bookable string
	items    []T
	err      error
	loading  bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	days := opts.Days
	if opts.Store != nil {
		days = opts.Store.Days(days)
	}

	return Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		config:      opts.Config,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		refresh:     opts.Refresh,
		logger:      logger.With("component", "ui"),
		now:         time.Now,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		currentView: ViewBookings,
		days:        days,
		logState:    logState{follow: true},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		m.clampSelection()
		cmd := m.ensureBookableData()
		return m, cmd

	case timeslotsMsg:
		if msg.bookable == m.slots.bookable {
			m.slots.items, m.slots.err, m.slots.loading = msg.slots, msg.err, false
		}
		return m, nil

	case gkeysMsg:
		if msg.bookable == m.access.bookable {
			m.access.items, m.access.err, m.access.loading = msg.keys, msg.err, false
		}
		return m, nil

	case logTailMsg:
		m.handleLogTail(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBookables:
		return m.renderBookables()
	case ViewAccess:
		return m.renderAccess()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderBookings()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.requestRefresh()
		return m, nil

	case key.Matches(msg, m.keys.MoreDays):
		m.setDays(m.days + 1)
		return m, nil

	case key.Matches(msg, m.keys.FewerDays):
		m.setDays(m.days - 1)
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.cycleView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.cycleView(-1))

	case key.Matches(msg, m.keys.ViewBookings), key.Matches(msg, m.keys.Escape):
		return m.switchView(ViewBookings)

	case key.Matches(msg, m.keys.ViewBookables):
		return m.switchView(ViewBookables)

	case key.Matches(msg, m.keys.ViewAccess):
		return m.switchView(ViewAccess)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)
	}

	switch m.currentView {
	case ViewBookables, ViewAccess:
		return m.handleBookableKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleBookingsKey(msg)
	}
}

func (m Model) cycleView(step int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewBookings
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	switch v {
	case ViewLogs:
		m.logState.lastRefresh = time.Time{}
		cmd := m.refreshLogs()
		return m, cmd
	case ViewBookables, ViewAccess:
		cmd := m.ensureBookableData()
		return m, cmd
	}
	return m, nil
}

func (m *Model) setDays(days int) {
	if days == m.days {
		return
	}
	m.days = days
	if m.store != nil {
		m.store.SetDays(days)
	}
	m.savePrefs()
	m.requestRefresh()
}

func (m *Model) requestRefresh() {
	if m.refresh != nil {
		m.refresh()
	}
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name}.WithDays(m.days)
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
