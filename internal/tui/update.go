package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/activityboard/internal/logger"
)

// tickMsg is sent every second for the header clock
type tickMsg time.Time

// boardChangedMsg is sent when the board reports a state change
type boardChangedMsg struct{}

// actionDoneMsg is sent when a board action started from the UI returns
type actionDoneMsg struct {
	name string
}

// Init loads the board and starts listening for changes
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForChange(), m.run("load", m.board.Load))
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange listens for board change signals
func (m Model) waitForChange() tea.Cmd {
	if m.changed == nil {
		return nil
	}
	changed := m.changed
	return func() tea.Msg {
		<-changed
		return boardChangedMsg{}
	}
}

// run executes a board action off the UI loop. Actions are not serialized,
// the board decides what a late response does.
func (m Model) run(name string, action func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		logger.Debug("Running board action", logger.F("action", name))
		action(ctx)
		return actionDoneMsg{name: name}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tickCmd()

	case boardChangedMsg:
		m.refresh()
		return m, m.waitForChange()

	case actionDoneMsg:
		m.refresh()
		if m.state.Error == "" {
			m.message = actionMessage(msg.name)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeCreate, ModeEdit:
			return m.updateInput(msg)
		case ModeLookup:
			return m.updateLookup(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func actionMessage(name string) string {
	switch name {
	case "create":
		return "Activity added"
	case "finish":
		return "Activity finished"
	case "revert":
		return "Activity reopened"
	case "edit", "confirmed":
		return "Saved"
	case "delete":
		return "Activity deleted"
	case "lookup":
		return "Lookup done (esc to dismiss)"
	case "load":
		return "Board loaded"
	}
	return ""
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.section == SectionPending {
			m.section = SectionDone
		} else {
			m.section = SectionPending
		}
		m.cursor = 0

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.currentList())-1 {
			m.cursor++
		}

	case msg.String() == "G":
		if n := len(m.currentList()); n > 0 {
			m.cursor = n - 1
		}

	case key.Matches(msg, keys.Add):
		return m.startCreate()

	case key.Matches(msg, keys.Edit):
		return m.startEdit()

	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		cmd := m.toggleDone()
		return m, cmd

	case key.Matches(msg, keys.Delete):
		cmd := m.handleDelete()
		return m, cmd

	case key.Matches(msg, keys.Lookup):
		return m.startLookup()

	case key.Matches(msg, keys.Refresh):
		m.message = "Reloading..."
		return m, m.run("load", m.board.Load)

	case key.Matches(msg, keys.Escape):
		if m.state.Lookup != nil {
			m.board.ClearLookup()
			m.refresh()
		}
		m.message = ""

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m Model) startCreate() (tea.Model, tea.Cmd) {
	m.board.OpenCreate()
	m.refresh()
	m.input.SetValue("")
	m.input.Placeholder = "Describe the activity..."
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	a := m.currentActivity()
	if a == nil {
		return m, nil
	}
	if m.section == SectionDone {
		m.message = "Reopen the activity to edit it"
		return m, nil
	}

	m.board.PrepareEdit(*a)
	m.refresh()
	m.input.SetValue(a.Description)
	m.input.Placeholder = "Edit activity..."
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m Model) startLookup() (tea.Model, tea.Cmd) {
	m.mode = ModeLookup
	m.input.SetValue("")
	m.input.Placeholder = "Activity id"
	m.input.Focus()
	return m, textinput.Blink
}

func (m *Model) toggleDone() tea.Cmd {
	a := m.currentActivity()
	if a == nil {
		return nil
	}
	id := a.ID
	if m.section == SectionDone {
		return m.run("revert", func(ctx context.Context) { m.board.Revert(ctx, id) })
	}
	return m.run("finish", func(ctx context.Context) { m.board.Finish(ctx, id) })
}

func (m *Model) handleDelete() tea.Cmd {
	a := m.currentActivity()
	if a == nil {
		return nil
	}
	id := a.ID
	if m.opts.ConfirmDelete {
		m.board.ConfirmDelete(id)
		m.refresh()
		return nil
	}
	return m.run("delete", func(ctx context.Context) { m.board.Delete(ctx, id) })
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		if m.mode == ModeCreate {
			m.board.CloseCreate()
		} else {
			m.board.CloseEdit()
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())

		if m.mode == ModeCreate {
			m.board.SetDraft(value)
			return m, m.run("create", m.board.Create)
		}

		m.board.SetEditDescription(value)
		if m.opts.ConfirmEdit {
			m.board.ConfirmEdit()
			m.refresh()
			return m, nil
		}
		return m, m.run("edit", m.board.Edit)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateLookup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()

		id, err := strconv.ParseInt(strings.TrimSpace(m.input.Value()), 10, 64)
		if err != nil || id <= 0 {
			m.message = fmt.Sprintf("Not an id: %q", m.input.Value())
			return m, nil
		}
		return m, m.run("lookup", func(ctx context.Context) { m.board.LookupByID(ctx, id) })
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		return m, m.run("confirmed", m.board.ExecuteConfirmed)

	case key.Matches(msg, keys.No):
		m.board.CancelConfirmation()
		m.refresh()
		// an edit waiting for confirmation goes back to its dialog
		return m, nil
	}
	return m, nil
}
