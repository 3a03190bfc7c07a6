package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Status colors
	Completed = lipgloss.Color("#95E1A3") // Green
	Danger    = lipgloss.Color("#FF6B6B") // Red
	Warning   = lipgloss.Color("#FFE66D") // Yellow

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Activity lists
	ListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	SectionInactiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Secondary)

	// Activity item
	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	ItemDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	IDStyle = lipgloss.NewStyle().Foreground(Secondary)

	DurationStyle = lipgloss.NewStyle().Foreground(Completed)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	ConfirmModalStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Warning).
				Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
