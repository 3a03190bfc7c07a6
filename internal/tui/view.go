package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/activityboard/internal/board"
	"github.com/existflow/activityboard/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)

	var body string
	switch m.mode {
	case ModeHelp:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderHelp())
	case ModeCreate, ModeEdit, ModeLookup:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderInputModal(),
			lipgloss.WithWhitespaceChars(" "))
	case ModeConfirm:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderConfirmModal(),
			lipgloss.WithWhitespaceChars(" "))
	default:
		body = m.renderLists(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

func (m Model) renderHeader() string {
	now := time.Now().Format("15:04:05")
	title := HeaderStyle.Render(Title)
	clock := HelpStyle.Render(now)

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(clock) - 1
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + clock
}

func (m Model) renderLists(height int) string {
	width := m.width - 4
	var s string

	s += m.renderSection(SectionPending, "Pending", m.state.Unfinished, width)
	s += "\n"
	s += m.renderSection(SectionDone, "Done", m.state.Finished, width)

	if m.state.Lookup != nil {
		s += "\n" + lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", max(width-4, 1))) + "\n"
		s += renderLookup(*m.state.Lookup)
	}

	if height < 1 {
		height = 1
	}
	return ListStyle.Width(m.width).Height(height).Render(s)
}

func (m Model) renderSection(section Section, name string, list []model.Activity, width int) string {
	titleStyle := SectionInactiveStyle
	if m.section == section {
		titleStyle = SectionStyle
	}
	s := titleStyle.Render(fmt.Sprintf("%s (%d)", name, len(list))) + "\n"

	if len(list) == 0 {
		if section == SectionPending {
			s += HelpStyle.Render("  Nothing pending. Press 'a' to add one.") + "\n"
		} else {
			s += HelpStyle.Render("  Nothing finished yet.") + "\n"
		}
		return s
	}

	descWidth := width - 24
	if descWidth < 10 {
		descWidth = 10
	}

	for i, a := range list {
		cursor := "  "
		style := ItemStyle
		if section == SectionDone {
			style = ItemDoneStyle
		}
		if m.section == section && i == m.cursor {
			cursor = "❯ "
			style = ItemSelectedStyle
		}

		icon := "[ ]"
		if a.IsDone {
			icon = "[x]"
		}

		line := style.Render(fmt.Sprintf("%s%s %-*s", cursor, icon, descWidth, truncate(a.Description, descWidth)))
		line += IDStyle.Render(fmt.Sprintf(" #%d", a.ID))
		if d := humanDuration(a.TimeToComplete()); d != "" {
			line += DurationStyle.Render(" " + d)
		}
		s += line + "\n"
	}
	return s
}

func renderLookup(a model.Activity) string {
	status := "pending"
	if a.IsDone {
		status = "done"
	}

	s := SectionStyle.Render(fmt.Sprintf("Activity #%d", a.ID)) + "\n"
	s += fmt.Sprintf("  %s\n", a.Description)
	s += HelpStyle.Render(fmt.Sprintf("  %s, created %s", status, a.CreatedAt.Local().Format("2006-01-02 15:04")))
	if a.CompletedAt != nil {
		s += HelpStyle.Render(fmt.Sprintf(", finished %s", a.CompletedAt.Local().Format("2006-01-02 15:04")))
	}
	return s + "\n"
}

func (m Model) renderStatusBar() string {
	if m.state.Error != "" {
		return StatusBarStyle.Width(m.width).Render(ErrorStyle.Render(m.state.Error))
	}

	help := "a:add  e:edit  x:done/undo  d:del  g:find  r:reload  ?:help  q:quit"
	if m.message != "" {
		help = m.message
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderInputModal() string {
	title := "New Activity"
	switch m.mode {
	case ModeEdit:
		title = "Edit Activity"
		if m.state.EditTarget != nil {
			title = fmt.Sprintf("Edit Activity #%d", m.state.EditTarget.ID)
		}
	case ModeLookup:
		title = "Find Activity"
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	if m.state.Error != "" {
		content += ErrorStyle.Render(m.state.Error) + "\n\n"
	}
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderConfirmModal() string {
	var question string
	switch m.state.Pending.Kind {
	case board.ActionEdit:
		desc := ""
		if m.state.EditTarget != nil {
			desc = m.state.EditTarget.Description
		}
		question = fmt.Sprintf("Save changes?\n\n  %s", truncate(desc, 50))
	case board.ActionDelete:
		question = fmt.Sprintf("Delete activity #%d?", m.state.Pending.ID)
	default:
		question = "Nothing to confirm"
	}

	content := lipgloss.NewStyle().Bold(true).Foreground(Warning).Render("Confirm") + "\n\n"
	content += question + "\n\n"
	if m.state.Error != "" {
		content += ErrorStyle.Render(m.state.Error) + "\n\n"
	}
	content += HelpStyle.Render("y:yes  n:no")

	return ConfirmModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	return `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  j/↓    Move down        │
│  k/↑    Move up          │
│  Tab    Switch list      │
│  G      Go to bottom     │
│                          │
│  Actions                 │
│  ───────                 │
│  a       Add activity    │
│  e       Edit            │
│  x/Enter Finish/reopen   │
│  d       Delete          │
│  g       Find by id      │
│  r       Reload          │
│                          │
│  Other                   │
│  ─────                   │
│  ?       Toggle help     │
│  q       Quit            │
│                          │
╰──────────────────────────╯

     Press any key to close
`
}
