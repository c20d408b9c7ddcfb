package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zetachan/encore/internal/catalog"
	"github.com/zetachan/encore/internal/match"
	"github.com/zetachan/encore/internal/pipeline"
	"github.com/zetachan/encore/internal/report"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ProgressView ViewState = iota
	SelectionView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	assembler     *pipeline.Assembler
	events        <-chan pipeline.Event
	width         int
	height        int
	progress      pipeline.ProgressUpdate
	pending       *match.PendingSelection
	candidateList list.Model
	report        *report.Report
	err           error
	help          help.Model
	keys          keyMap
}

type runEventMsg struct {
	event pipeline.Event
	open  bool
}

type moreCandidatesMsg struct {
	page []catalog.Candidate
	err  error
}

// NewModel creates a TUI model watching the given event stream. The
// assembler is also the sink for selection decisions.
func NewModel(ctx context.Context, assembler *pipeline.Assembler, events <-chan pipeline.Event) *Model {
	return &Model{
		ctx:           ctx,
		view:          ProgressView,
		assembler:     assembler,
		events:        events,
		candidateList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:          help.New(),
		keys:          newKeyMap(),
	}
}

// Init starts listening for run events.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.candidateList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SelectionView:
			return m.handleSelectionKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}

	case runEventMsg:
		if !msg.open {
			return m, tea.Quit
		}
		return m.handleEvent(msg.event)

	case moreCandidatesMsg:
		if msg.err != nil {
			// Out of results; the list stays as it is.
			return m, nil
		}
		for _, c := range msg.page {
			m.candidateList.InsertItem(len(m.candidateList.Items()), candidateItem{candidate: c})
		}
		return m, nil
	}

	if m.view == SelectionView {
		var cmd tea.Cmd
		m.candidateList, cmd = m.candidateList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ProgressView:
		return m.renderProgress()
	case SelectionView:
		return m.renderSelection()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleEvent(event pipeline.Event) (tea.Model, tea.Cmd) {
	switch event := event.(type) {
	case pipeline.ProgressUpdate:
		m.progress = event
		m.view = ProgressView
		return m, m.waitForEvent()

	case pipeline.SelectionRequested:
		m.pending = event.Pending
		items := make([]list.Item, len(event.Pending.Candidates))
		for i, c := range event.Pending.Candidates {
			items[i] = candidateItem{candidate: c}
		}
		m.candidateList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.candidateList.Title = fmt.Sprintf("Pick a match for '%s'", event.Pending.Title)
		m.candidateList.SetSize(m.width-4, m.height-8)
		m.view = SelectionView
		return m, nil

	case pipeline.RunSucceeded:
		r := event.Report
		m.report = &r
		m.view = ResultView
		return m, m.waitForEvent()

	case pipeline.RunFailed:
		m.err = event.Err
		return m, m.waitForEvent()
	}
	return m, m.waitForEvent()
}

func (m *Model) handleSelectionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.candidateList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(candidateItem); ok {
				candidate := item.candidate
				if err := m.assembler.SubmitSelection(&candidate); err != nil {
					m.err = err
					return m, nil
				}
				m.view = ProgressView
				m.pending = nil
				return m, m.waitForEvent()
			}
		}
	case "s":
		if err := m.assembler.Skip(); err != nil {
			m.err = err
			return m, nil
		}
		m.view = ProgressView
		m.pending = nil
		return m, m.waitForEvent()
	case "m":
		return m, m.fetchMoreCandidates()
	}

	var cmd tea.Cmd
	m.candidateList, cmd = m.candidateList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		return runEventMsg{event: event, open: ok}
	}
}

func (m *Model) fetchMoreCandidates() tea.Cmd {
	return func() tea.Msg {
		page, err := m.assembler.MoreCandidates(m.ctx)
		return moreCandidatesMsg{page: page, err: err}
	}
}

func (m *Model) renderProgress() string {
	title := styles.title.Render("Building Playlist")

	var status string
	if m.progress.Total > 0 {
		status = fmt.Sprintf("Matching %q (%d/%d, %d added)",
			m.progress.CurrentSong, m.progress.Processed, m.progress.Total, m.progress.Added)
	} else {
		status = "Starting run..."
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, status, helpView)
}

func (m *Model) renderSelection() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.skip, m.keys.more, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.candidateList.View(), helpView)
}

func (m *Model) renderResult() string {
	if m.report == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	title := styles.ok.Render("✓ Playlist Created!")
	info := fmt.Sprintf("\n%s\nAdded: %d/%d\nPlaylist: %s",
		m.report.Message, m.report.AddedCount(), m.report.TotalSongs, m.report.PlaylistURL)

	var missing string
	if len(m.report.MissingSongs) > 0 {
		missing = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Not found (%d):", len(m.report.MissingSongs))))
		for _, song := range m.report.MissingSongs {
			missing += fmt.Sprintf("\n  • %s", song)
		}
	}

	var alternates string
	if len(m.report.AddedWithDifferentArtist) > 0 {
		alternates = fmt.Sprintf("\n\n%s", styles.warn.Render("Added with different artist:"))
		for _, alt := range m.report.AddedWithDifferentArtist {
			alternates += fmt.Sprintf("\n  • %s → %s by %s", alt.Original, alt.FoundName, alt.FoundArtist)
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s%s%s%s\n\n%s", title, info, missing, alternates, helpView)
}
