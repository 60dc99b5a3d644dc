package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada-tasks/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Overdue, DueSoon, Neutral                     lipgloss.Style
	Selected                                      lipgloss.Style

	Border       lipgloss.Border
	BorderColor  lipgloss.TerminalColor
	BoxUnchecked string
	Bullet       string
}

var current = classic()

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = neon()
	case "mono":
		current = mono()
	default:
		current = classic()
	}
}

// Expose what renderers need
func Current() Theme { return current }

// Urgency returns the style for a due-date category.
func (t Theme) Urgency(u model.Urgency) lipgloss.Style {
	switch u {
	case model.UrgencyOverdue:
		return t.Overdue
	case model.UrgencyDueSoon:
		return t.DueSoon
	case model.UrgencyNeutral:
		return t.Neutral
	}
	return lipgloss.NewStyle()
}

func fg(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

func classic() Theme {
	return Theme{
		Name:    "classic",
		Title:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Accent:  fg("12"),
		Success: fg("42"),
		Error:   fg("9").Bold(true),
		Pending: fg("214"),
		Overdue: fg("9"),
		DueSoon: fg("214"),
		Neutral: lipgloss.NewStyle().Faint(true),

		Selected:     lipgloss.NewStyle().Bold(true).Reverse(true),
		Border:       lipgloss.NormalBorder(),
		BorderColor:  lipgloss.Color("8"),
		BoxUnchecked: "☐",
		Bullet:       "•",
	}
}

func neon() Theme {
	t := classic()
	t.Name = "neon"
	t.Title = fg("13").Bold(true) // bright magenta
	t.Accent = fg("14")
	t.Pending = fg("11")
	t.DueSoon = fg("11")
	t.Border = lipgloss.RoundedBorder()
	t.BorderColor = lipgloss.Color("13")
	t.BoxUnchecked = "◻"
	return t
}

func mono() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:  "mono",
		Title: plain, Muted: plain, Accent: plain, Success: plain, Error: plain, Pending: plain,
		Overdue: plain, DueSoon: plain, Neutral: plain,

		Selected:     plain.Reverse(true),
		Border:       lipgloss.Border{Top: "-", Bottom: "-", Left: "|", Right: "|", TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+"},
		BorderColor:  lipgloss.NoColor{},
		BoxUnchecked: "[ ]",
		Bullet:       "-",
	}
}
