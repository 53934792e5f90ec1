// Package tui renders a live, read-only view of the board. It reloads the
// working copy whenever the daemon broadcasts a change, so edits made from
// any terminal show up here without a manual refresh.
package tui

import (
	"context"
	"database/sql"

	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/tablero/internal/board"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
)

// Model is the viewer state. Navigation is local; all data changes arrive
// through reloads of the stored board.
type Model struct {
	db     *sql.DB
	userID string
	keys   KeyMap
	colors config.ColorScheme

	board     *board.Board
	projects  []*models.Project
	projIdx   int
	colIdx    int
	taskIdx   int
	width     int
	height    int
	showHelp  bool
	statusMsg string
	loadErr   error

	// nil when the daemon is not running; the viewer then only refreshes
	// on demand.
	eventCh <-chan events.Event
}

// New builds a viewer over the given store handle.
func New(db *sql.DB, cfg *config.Config, userID string, eventCh <-chan events.Event) Model {
	return Model{
		db:      db,
		userID:  userID,
		keys:    NewKeyMap(cfg.KeyMappings),
		colors:  cfg.ColorScheme,
		eventCh: eventCh,
	}
}

// ============================================================================
// Messages and commands
// ============================================================================

type boardLoadedMsg struct{ board *board.Board }

type boardLoadErrMsg struct{ err error }

type boardChangedMsg struct{ event events.Event }

type eventStreamClosedMsg struct{}

func (m Model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		b, err := database.LoadBoard(context.Background(), m.db, m.userID)
		if err != nil {
			return boardLoadErrMsg{err: err}
		}
		return boardLoadedMsg{board: b}
	}
}

func (m Model) waitForEventCmd() tea.Cmd {
	if m.eventCh == nil {
		return nil
	}
	ch := m.eventCh
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return eventStreamClosedMsg{}
		}
		return boardChangedMsg{event: event}
	}
}

// Init loads the board and starts listening for change broadcasts.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reloadCmd(), m.waitForEventCmd())
}

// ============================================================================
// Update
// ============================================================================

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		return m.setBoard(msg.board), nil

	case boardLoadErrMsg:
		m.loadErr = msg.err
		return m, nil

	case boardChangedMsg:
		m.statusMsg = "board updated"
		return m, tea.Batch(m.reloadCmd(), m.waitForEventCmd())

	case eventStreamClosedMsg:
		m.eventCh = nil
		m.statusMsg = "live updates disconnected"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Quit):
		return m, tea.Quit

	case keyMatches(msg, m.keys.Refresh):
		m.statusMsg = ""
		return m, m.reloadCmd()

	case keyMatches(msg, m.keys.ShowHelp):
		m.showHelp = !m.showHelp
		return m, nil

	case keyMatches(msg, m.keys.PrevColumn):
		if m.colIdx > 0 {
			m.colIdx--
			m.taskIdx = 0
		}
		return m, nil

	case keyMatches(msg, m.keys.NextColumn):
		if m.colIdx < len(m.columns())-1 {
			m.colIdx++
			m.taskIdx = 0
		}
		return m, nil

	case keyMatches(msg, m.keys.PrevTask):
		if m.taskIdx > 0 {
			m.taskIdx--
		}
		return m, nil

	case keyMatches(msg, m.keys.NextTask):
		if m.taskIdx < len(m.selectedColumnTasks())-1 {
			m.taskIdx++
		}
		return m, nil

	case keyMatches(msg, m.keys.PrevProject):
		if len(m.projects) > 0 {
			m.projIdx = (m.projIdx - 1 + len(m.projects)) % len(m.projects)
			m.colIdx, m.taskIdx = 0, 0
		}
		return m, nil

	case keyMatches(msg, m.keys.NextProject):
		if len(m.projects) > 0 {
			m.projIdx = (m.projIdx + 1) % len(m.projects)
			m.colIdx, m.taskIdx = 0, 0
		}
		return m, nil
	}
	return m, nil
}

// setBoard swaps in a fresh snapshot, keeping the selection in range and
// following the profile's focused project on first load.
func (m Model) setBoard(b *board.Board) Model {
	firstLoad := m.board == nil
	m.board = b
	m.loadErr = nil

	projects, err := b.ProjectsInOrder()
	if err != nil {
		m.loadErr = err
		return m
	}
	m.projects = projects

	if firstLoad && b.Profile != nil {
		for i, p := range projects {
			if p.ID == b.Profile.LastProjectID {
				m.projIdx = i
				break
			}
		}
	}
	if m.projIdx >= len(projects) {
		m.projIdx = 0
	}

	cols := m.columns()
	if m.colIdx >= len(cols) {
		m.colIdx = 0
	}
	if tasks := m.selectedColumnTasks(); m.taskIdx >= len(tasks) {
		m.taskIdx = 0
	}
	return m
}

// ============================================================================
// Selection helpers
// ============================================================================

func (m Model) currentProject() *models.Project {
	if m.projIdx < len(m.projects) {
		return m.projects[m.projIdx]
	}
	return nil
}

func (m Model) columns() []*models.Status {
	p := m.currentProject()
	if m.board == nil || p == nil {
		return nil
	}
	statuses, err := m.board.StatusesInProject(p.ID)
	if err != nil {
		return nil
	}
	return statuses
}

func (m Model) selectedColumnTasks() []*models.Task {
	cols := m.columns()
	if m.colIdx >= len(cols) {
		return nil
	}
	tasks, err := m.board.TasksInStatus(cols[m.colIdx].ID)
	if err != nil {
		return nil
	}
	return tasks
}
