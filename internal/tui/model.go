package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/activityboard/internal/board"
	"github.com/existflow/activityboard/internal/logger"
	"github.com/existflow/activityboard/internal/model"
)

// Title is shown in the header
const Title = "Quadro de Atividades"

// Section represents which list the cursor is in
type Section int

const (
	SectionPending Section = iota
	SectionDone
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeCreate
	ModeEdit
	ModeConfirm
	ModeLookup
	ModeHelp
)

// Options holds presentation preferences
type Options struct {
	ConfirmEdit   bool
	ConfirmDelete bool
}

// Model is the main TUI model. All board data is read from a snapshot
// refreshed whenever the board reports a change.
type Model struct {
	board *board.Board
	ctx   context.Context
	opts  Options

	// signalled by the board's change callback
	changed chan struct{}

	state board.State

	// UI state
	width   int
	height  int
	section Section
	cursor  int
	mode    Mode

	input textinput.Model

	message string
}

// NewModel creates a new TUI model over b
func NewModel(ctx context.Context, b *board.Board, opts Options) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Describe the activity..."
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		board:   b,
		ctx:     ctx,
		opts:    opts,
		changed: make(chan struct{}, 1), // Buffered to avoid blocking
		input:   ti,
	}

	changed := m.changed
	b.SetOnChange(func() {
		// Non-blocking send to trigger UI refresh
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	m.refresh()
	return m
}

// refresh re-reads the board and keeps the cursor and mode consistent
// with it
func (m *Model) refresh() {
	m.state = m.board.Snapshot()

	if n := len(m.currentList()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	switch {
	case m.state.ConfirmOpen:
		m.mode = ModeConfirm
	case m.state.EditOpen:
		m.mode = ModeEdit
	case m.state.CreateOpen:
		m.mode = ModeCreate
	case m.mode == ModeCreate || m.mode == ModeEdit || m.mode == ModeConfirm:
		m.mode = ModeNormal
		m.input.Blur()
	}
}

func (m *Model) currentList() []model.Activity {
	if m.section == SectionDone {
		return m.state.Finished
	}
	return m.state.Unfinished
}

func (m *Model) currentActivity() *model.Activity {
	list := m.currentList()
	if m.cursor < len(list) {
		return &list[m.cursor]
	}
	return nil
}
