package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PickerView ViewState = iota
	ConfirmView
	TransferView
	ResultView
)

// Options wires a [Model] to one transfer route.
type Options struct {
	Origin      services.Service
	Destination services.Descriptor
	DryRun      bool

	// Transferer builds the engine for a run, reporting progress on the given channel.
	Transferer func(progress chan<- tasks.ProgressUpdate) *tasks.Transferer
}

// transferRun carries everything the background transfer goroutine reports.
type transferRun struct {
	progress chan tasks.ProgressUpdate
	results  chan tasks.PlaylistResult
	done     chan completed
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     Options
	view     ViewState
	width    int
	height   int
	loaded   bool
	list     list.Model
	bar      progress.Model
	run      *transferRun
	progress tasks.ProgressUpdate
	finished int // playlists with a result in the current run
	total    int // playlists in the current run
	batch    tasks.BatchResult
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model for the route in opts.
func NewModel(ctx context.Context, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("%s → %s", opts.Origin.Descriptor().Name, opts.Destination.Name)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return &Model{
		ctx:    ctx,
		cancel: cancel,
		opts:   opts,
		view:   PickerView,
		list:   l,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the origin's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// State returns the current view.
func (m *Model) State() ViewState { return m.view }

// Result returns the outcome of the last transfer.
func (m *Model) Result() (tasks.BatchResult, error) { return m.batch, m.err }

// Selected returns the marked playlists and whether the liked songs entry is marked.
func (m *Model) Selected() ([]models.Playlist, bool) {
	var (
		playlists []models.Playlist
		liked     bool
	)
	for _, it := range m.list.Items() {
		item := it.(playlistItem)
		switch {
		case !item.selected:
		case item.liked:
			liked = true
		default:
			playlists = append(playlists, item.playlist)
		}
	}
	return playlists, liked
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-4)
		m.bar.Width = min(max(msg.Width-10, 10), 60)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PickerView:
			return m.handlePickerKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case TransferView:
			if msg.String() == "ctrl+c" {
				m.cancel()
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == PickerView {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(fetched)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		items := []list.Item{playlistItem{playlist: models.Playlist{ID: tasks.LikedHandle, Name: "Liked Songs"}, liked: true}}
		for _, pl := range data.playlists {
			items = append(items, playlistItem{playlist: pl})
		}
		m.loaded = true
		return m, m.list.SetItems(items)

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgPlaylistDone:
		m.finished++
		return m, m.waitForProgress()

	case MsgTransferComplete:
		data := msg.data.(completed)
		m.batch = data.batch
		m.err = data.err
		m.run = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.back):
		m.cancel()
		return m, tea.Quit
	case !m.loaded:
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		i := m.list.Index()
		if item, ok := m.list.SelectedItem().(playlistItem); ok {
			item.selected = !item.selected
			return m, m.list.SetItem(i, item)
		}
		return m, nil
	case key.Matches(msg, m.keys.all):
		return m, m.toggleAll()
	case key.Matches(msg, m.keys.enter):
		playlists, liked := m.Selected()
		if len(playlists) == 0 && !liked {
			item, ok := m.list.SelectedItem().(playlistItem)
			if !ok {
				return m, nil
			}
			item.selected = true
			m.list.SetItem(m.list.Index(), item)
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// toggleAll selects every entry, or clears them all when everything is already selected.
func (m *Model) toggleAll() tea.Cmd {
	items := m.list.Items()
	mark := false
	for _, it := range items {
		if !it.(playlistItem).selected {
			mark = true
			break
		}
	}
	updated := make([]list.Item, len(items))
	for i, it := range items {
		item := it.(playlistItem)
		item.selected = mark
		updated[i] = item
	}
	return m.list.SetItems(updated)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancel()
		return m, tea.Quit
	case "n", "esc":
		m.view = PickerView
		return m, nil
	case "y":
		m.view = TransferView
		return m, m.startTransfer()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.cancel()
		return m, tea.Quit
	case "r":
		m.view = PickerView
		m.batch = tasks.BatchResult{}
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		items := m.list.Items()
		cleared := make([]list.Item, len(items))
		for i, it := range items {
			item := it.(playlistItem)
			item.selected = false
			cleared[i] = item
		}
		return m, m.list.SetItems(cleared)
	}
	return m, nil
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.opts.Origin.ListPlaylists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) startTransfer() tea.Cmd {
	playlists, liked := m.Selected()
	m.total = len(playlists)
	if liked {
		m.total++
	}
	m.finished = 0

	run := &transferRun{
		progress: make(chan tasks.ProgressUpdate, 64),
		results:  make(chan tasks.PlaylistResult, m.total),
		done:     make(chan completed, 1),
	}
	m.run = run
	engine := m.opts.Transferer(run.progress)

	go func() {
		defer close(run.results)
		if err := engine.Preflight(m.ctx); err != nil {
			run.done <- completed{err: err}
			return
		}
		batch, err := engine.Run(m.ctx, liked, playlists, func(r tasks.PlaylistResult) {
			run.results <- r
		})
		run.done <- completed{batch: batch, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	run := m.run
	if run == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case u := <-run.progress:
			return progressUpdateMsg(u)
		case r, ok := <-run.results:
			if ok {
				return playlistDoneMsg(r)
			}
		}
		// results is closed only after every playlist result was delivered
		d := <-run.done
		return transferCompleteMsg(d.batch, d.err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == PickerView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PickerView:
		return m.renderPicker()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderPicker() string {
	if !m.loaded {
		return fmt.Sprintf("Loading playlists from %s...", m.opts.Origin.Descriptor().Name)
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.all, m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
}

func (m *Model) renderConfirm() string {
	playlists, liked := m.Selected()

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Transfer to %s?", m.opts.Destination.Name)))
	b.WriteString("\n")
	if liked {
		b.WriteString("  • Liked Songs\n")
	}
	for _, pl := range playlists {
		fmt.Fprintf(&b, "  • %s\n", pl.Name)
	}
	if m.opts.DryRun {
		b.WriteString(styles.warn.Render("\nDry run: nothing will be written.") + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit}))
	return b.String()
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render(fmt.Sprintf("Transferring (%d/%d playlists)", m.finished, m.total))

	percent := 0.0
	if m.progress.Total > 0 {
		percent = float64(m.progress.Step) / float64(m.progress.Total)
	}
	return fmt.Sprintf("%s\n%s\n\n%s %s", title, m.bar.ViewAs(percent), m.progress.Phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Transfer stopped: %v", m.err)))
	} else {
		b.WriteString(styles.ok.Render("✓ Transfer complete"))
	}
	b.WriteString("\n\n")

	for _, r := range m.batch.Results {
		if r.Err != nil {
			fmt.Fprintf(&b, "%s %s\n", styles.err.Render("✗"), fmt.Sprintf("%s: %v", r.Playlist.Name, r.Err))
			continue
		}
		fmt.Fprintf(&b, "%s %s (%d/%d matched)\n", styles.ok.Render("✓"), r.Playlist.Name, r.Matched(), r.Total)
		for _, song := range r.Unmatched {
			b.WriteString(styles.warn.Render("    • "+song.String()) + "\n")
		}
	}

	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit}))
	return b.String()
}
