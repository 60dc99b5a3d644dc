package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada-tasks/internal/board"
	"github.com/Makepad-fr/tada-tasks/internal/model"
	"github.com/Makepad-fr/tada-tasks/internal/ui"
	"github.com/Makepad-fr/tada-tasks/internal/view"
)

// Options configure the interactive client.
type Options struct {
	Locale model.Locale
	Theme  ui.Theme
	// Today is injected so urgency stays testable.
	Today func() model.Date
}

// Messages produced by commands. Every one carries a board snapshot so the
// model can ignore out-of-date views.
type (
	loadedMsg struct {
		snap board.Snapshot
		err  error
	}
	createdMsg struct {
		form board.Form
		snap board.Snapshot
		err  error
	}
	doneMsg struct {
		task model.Task
		snap board.Snapshot
		err  error
	}
)

// cardItem adapts a view.Card to bubbles/list.Item
type cardItem struct{ view.Card }

func (i cardItem) Title() string       { return i.Text }
func (i cardItem) Description() string { return i.Label }
func (i cardItem) FilterValue() string { return i.Text }

type keyMap struct {
	add, done, reload key.Binding
}

var keys = keyMap{
	add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	done:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "done")),
	reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload/retry")),
}

const (
	fieldText = iota
	fieldDue
)

// Model is the Bubble Tea model for the task list and creation form.
type Model struct {
	ctx   context.Context
	board *board.Board
	opt   Options

	list    list.Model
	version uint64 // board snapshot currently shown

	// Inline add
	adding  bool
	form    board.Form
	inputs  [2]textinput.Model
	focus   int
	formErr string

	pending int // commands in flight
	banner  string
	retry   tea.Cmd

	width, height int
}

// New builds a model. Call Init (or run it in a tea.Program) to load tasks.
func New(ctx context.Context, b *board.Board, opt Options) Model {
	if opt.Today == nil {
		opt.Today = model.Today
	}
	if opt.Theme.Name == "" {
		opt.Theme = ui.Current()
	}

	d := delegate{theme: opt.Theme}
	l := list.New(nil, d, 0, 0)
	l.Title = "Tasks"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = opt.Theme.Title
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	extra := func() []key.Binding { return []key.Binding{keys.add, keys.done, keys.reload} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	m := Model{
		ctx:    ctx,
		board:  b,
		opt:    opt,
		list:   l,
		width:  80,
		height: 24,
	}

	text := textinput.New()
	text.Prompt = "Task  > "
	text.Placeholder = "task contents"
	text.CharLimit = 200
	due := textinput.New()
	due.Prompt = "Due   > "
	due.Placeholder = "YYYY-MM-DD  (+/- to pick, empty for none)"
	due.CharLimit = 10
	m.inputs = [2]textinput.Model{text, due}
	m.resize()
	return m
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, b *board.Board, opt Options) error {
	p := tea.NewProgram(New(ctx, b, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return m.reloadCmd() }

// ------------- commands -------------

func (m Model) reloadCmd() tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		err := b.Reload(ctx)
		return loadedMsg{snap: b.Snapshot(), err: err}
	}
}

func (m Model) submitCmd(f board.Form) tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		err := b.Submit(ctx, &f)
		return createdMsg{form: f, snap: b.Snapshot(), err: err}
	}
}

func (m Model) doneCmd(t model.Task) tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		err := b.MarkDone(ctx, t)
		return doneMsg{task: t, snap: b.Snapshot(), err: err}
	}
}

// ------------- update -------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.pending = max(m.pending-1, 0)
		m.apply(msg.snap)
		if msg.err != nil {
			m.fail(msg.err, m.reloadCmd())
		} else {
			m.clearBanner()
		}
		return m, nil

	case createdMsg:
		m.pending = max(m.pending-1, 0)
		m.apply(msg.snap)
		var ae *board.ActionError
		if msg.err != nil && errors.As(msg.err, &ae) && ae.Action == board.ActionCreate {
			// Creation failed: keep the form as typed and offer a retry.
			m.fail(msg.err, m.submitCmd(msg.form))
			return m, nil
		}
		m.closeForm()
		if msg.err != nil {
			m.fail(msg.err, m.reloadCmd())
		} else {
			m.clearBanner()
		}
		return m, nil

	case doneMsg:
		m.pending = max(m.pending-1, 0)
		m.apply(msg.snap)
		if msg.err != nil {
			var ae *board.ActionError
			retry := m.doneCmd(msg.task)
			if errors.As(msg.err, &ae) && ae.Action == board.ActionReload {
				retry = m.reloadCmd()
			}
			m.fail(msg.err, retry)
		} else {
			m.clearBanner()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.adding {
			return m.updateForm(msg)
		}
		// Let the list own the keyboard while the filter is being typed.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc":
			if m.list.FilterState() == list.FilterApplied && msg.String() == "esc" {
				break
			}
			return m, tea.Quit
		case "a":
			return m.openForm()
		case " ", "x":
			it, ok := m.list.SelectedItem().(cardItem)
			if !ok {
				return m, nil
			}
			return m.dispatch(m.doneCmd(it.Task))
		case "r":
			cmd := m.retry
			if cmd == nil {
				cmd = m.reloadCmd()
			}
			m.retry = nil
			return m.dispatch(cmd)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		m.setFocus(1 - m.focus)
		return m, nil
	case "+", "-":
		// Only a blank or complete date is picked; otherwise "-" is typed.
		if m.focus == fieldDue && m.form.SetExpireText(m.inputs[fieldDue].Value()) == nil {
			n := 1
			if msg.String() == "-" {
				n = -1
			}
			m.form.ShiftExpire(n, m.opt.Today())
			m.inputs[fieldDue].SetValue(m.form.Expire.Time().Format("2006/01/02"))
			m.inputs[fieldDue].CursorEnd()
			m.formErr = ""
			return m, nil
		}
	case "enter":
		text := strings.TrimSpace(m.inputs[fieldText].Value())
		if text == "" {
			m.formErr = "Text cannot be empty"
			return m, nil
		}
		if err := m.form.SetExpireText(m.inputs[fieldDue].Value()); err != nil {
			m.formErr = "Due date must be YYYY-MM-DD or YYYY/MM/DD"
			return m, nil
		}
		m.form.Text = text
		m.formErr = ""
		return m.dispatch(m.submitCmd(m.form))
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) dispatch(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.pending++
	return m, cmd
}

func (m Model) openForm() (tea.Model, tea.Cmd) {
	m.adding = true
	m.formErr = ""
	m.inputs[fieldText].SetValue(m.form.Text)
	m.inputs[fieldDue].SetValue("")
	if m.form.Expire != nil {
		m.inputs[fieldDue].SetValue(m.form.Expire.Time().Format("2006/01/02"))
	}
	m.setFocus(fieldText)
	m.resize()
	return m, textinput.Blink
}

func (m *Model) closeForm() {
	m.adding = false
	m.formErr = ""
	m.form.Reset()
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.resize()
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// apply replaces the list with snap unless a newer snapshot is already shown.
func (m *Model) apply(snap board.Snapshot) {
	if snap.Version <= m.version {
		return
	}
	m.version = snap.Version
	cards := view.Cards(snap.Tasks, m.opt.Today(), m.opt.Locale)
	items := make([]list.Item, 0, len(cards))
	for _, c := range cards {
		items = append(items, cardItem{c})
	}
	m.list.SetItems(items)
}

func (m *Model) fail(err error, retry tea.Cmd) {
	m.banner = err.Error()
	m.retry = retry
	m.resize()
}

func (m *Model) clearBanner() {
	m.banner = ""
	m.retry = nil
	m.resize()
}

func (m *Model) resize() {
	h := m.height - 4
	if m.adding {
		h -= 5
	}
	if m.banner != "" {
		h--
	}
	m.list.SetSize(max(m.width-4, 10), max(h, 3))
}

// ------------- view -------------

func (m Model) View() string {
	th := m.opt.Theme
	content := m.list.View()

	if m.adding {
		title := "New task"
		if m.formErr != "" {
			title += "  " + th.Error.Render(m.formErr)
		}
		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.BorderColor).Padding(0, 1)
		form := strings.Join([]string{title, m.inputs[fieldText].View(), m.inputs[fieldDue].View()}, "\n")
		content += "\n" + box.Render(form)
	}
	if m.banner != "" {
		hint := "  (r to retry)"
		if m.adding {
			hint = "  (enter to retry)"
		}
		content += "\n" + th.Error.Render("✖ "+m.banner) + th.Muted.Render(hint)
	} else if m.pending > 0 {
		content += "\n" + th.Pending.Render("working…")
	}
	return panelString(th, content)
}

// helpers for View
func panelString(th ui.Theme, inner string) string {
	return lipgloss.NewStyle().
		Border(th.Border).
		BorderForeground(th.BorderColor).
		Padding(0, 1).
		Render(inner)
}

// delegate renders each card as one line.
type delegate struct{ theme ui.Theme }

func (d delegate) Height() int                               { return 1 }
func (d delegate) Spacing() int                              { return 0 }
func (d delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(cardItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = d.theme.Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+it.Line(d.theme))
}
