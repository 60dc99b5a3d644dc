// Package view turns tasks into display cards. Everything here is a pure
// function of its inputs.
package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tada-tasks/internal/model"
	"github.com/Makepad-fr/tada-tasks/internal/ui"
)

const maxTextWidth = 80

// Card is the display form of one task.
type Card struct {
	ID      string
	Text    string
	Label   string
	Urgency model.Urgency
	Task    model.Task
}

// Cards builds one card per task, in the order given.
func Cards(tasks []model.Task, today model.Date, loc model.Locale) []Card {
	out := make([]Card, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewCard(t, today, loc))
	}
	return out
}

func NewCard(t model.Task, today model.Date, loc model.Locale) Card {
	id := "-"
	if t.ID != nil {
		id = strconv.Itoa(*t.ID)
	}
	return Card{
		ID:      id,
		Text:    t.Text,
		Label:   model.FormatLabel(t.Expire, loc),
		Urgency: model.Classify(t.Expire, today),
		Task:    t,
	}
}

// Line renders a card on a single line.
func (c Card) Line(th ui.Theme) string {
	var b strings.Builder
	b.WriteString(th.Muted.Render(fmt.Sprintf("#%-3s", c.ID)))
	b.WriteString(" ")
	b.WriteString(th.BoxUnchecked)
	b.WriteString(" ")
	b.WriteString(ui.Truncate(c.Text, maxTextWidth))
	if c.Label != "" {
		b.WriteString("  ")
		b.WriteString(th.Urgency(c.Urgency).Render("due " + c.Label))
	}
	return b.String()
}

// Counts tallies cards per urgency.
func Counts(cards []Card) map[model.Urgency]int {
	out := make(map[model.Urgency]int, 4)
	for _, c := range cards {
		out[c.Urgency]++
	}
	return out
}

// Lines renders the list body, optionally grouped by urgency.
func Lines(cards []Card, th ui.Theme, group bool) []string {
	if len(cards) == 0 {
		return []string{th.Muted.Render("no tasks")}
	}
	if !group {
		out := make([]string, 0, len(cards))
		for _, c := range cards {
			out = append(out, c.Line(th))
		}
		return out
	}

	var lines []string
	for i, u := range []model.Urgency{model.UrgencyOverdue, model.UrgencyDueSoon, model.UrgencyNeutral, model.UrgencyNone} {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, th.Accent.Render(th.Bullet+" "+groupTitle(u)))
		n := 0
		for _, c := range cards {
			if c.Urgency == u {
				lines = append(lines, c.Line(th))
				n++
			}
		}
		if n == 0 {
			lines = append(lines, th.Muted.Render("(none)"))
		}
	}
	return lines
}

func groupTitle(u model.Urgency) string {
	switch u {
	case model.UrgencyOverdue:
		return "Overdue"
	case model.UrgencyDueSoon:
		return "Due soon"
	case model.UrgencyNeutral:
		return "Later"
	}
	return "No due date"
}

// Render draws the framed list with a header of counts.
func Render(cards []Card, th ui.Theme, group bool) string {
	c := Counts(cards)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		th.Title.Render("Tasks"),
		th.Overdue.Render("overdue"), c[model.UrgencyOverdue],
		th.DueSoon.Render("soon"), c[model.UrgencyDueSoon],
		th.Accent.Render("total"), len(cards),
	)
	lines := []string{header, ""}
	lines = append(lines, Lines(cards, th, group)...)
	return ui.Panel(lines)
}
