// Package tui renders the customer manager view in the terminal with
// Bubble Tea. The model owns no customer state: every key is forwarded to
// the view and the screen is redrawn from the view's snapshots.
package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/contactdesk/backend/internal/application/manager"
	"github.com/contactdesk/backend/internal/domain/customer"
)

// Controller is the part of *manager.View the terminal drives
type Controller interface {
	Snapshot() manager.Snapshot
	Subscribe() (<-chan struct{}, func())
	ChangeField(field customer.Field, value string)
	BlurField(field customer.Field)
	SetSearch(term string)
	SetSort(sortBy string)
	Submit()
	StartEdit(id customer.ID)
	CancelEdit()
	RequestDelete(id customer.ID)
	CancelDelete()
	ConfirmDelete()
}

// focus positions after the four form fields
const (
	focusSearch = len(customer.Fields) + iota
	focusTable
	focusCount
)

type (
	changedMsg struct{}
	closedMsg  struct{}
)

// Model is the Bubble Tea model of the customer manager
type Model struct {
	ctrl        Controller
	keys        keyMap
	styles      styles
	inputs      []textinput.Model
	search      textinput.Model
	focus       int
	selected    int
	snap        manager.Snapshot
	changes     <-chan struct{}
	unsubscribe func()
	width       int
}

var placeholders = map[customer.Field]string{
	customer.FieldName:    "Jane Doe",
	customer.FieldEmail:   "jane@example.com",
	customer.FieldPhone:   "555-123-4567",
	customer.FieldAddress: "optional",
}

// New subscribes to ctrl and builds the initial screen
func New(ctrl Controller) Model {
	m := Model{
		ctrl:   ctrl,
		keys:   defaultKeyMap(),
		styles: defaultStyles(),
		inputs: make([]textinput.Model, len(customer.Fields)),
	}
	for i, field := range customer.Fields {
		in := textinput.New()
		in.Placeholder = placeholders[field]
		in.Prompt = ""
		in.CharLimit = 200
		m.inputs[i] = in
	}
	m.search = textinput.New()
	m.search.Placeholder = "filter by name"
	m.search.Prompt = ""

	m.changes, m.unsubscribe = ctrl.Subscribe()
	m.refresh()
	m.inputs[0].Focus()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return closedMsg{}
		}
		return changedMsg{}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.refresh()
		return m, waitForChange(m.changes)
	case closedMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// refresh pulls a snapshot and mirrors its form and search into the inputs.
// It runs on the program goroutine, the same one that forwards keystrokes,
// so the snapshot already contains every edit sent before it.
func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	for i, field := range customer.Fields {
		if v := m.snap.Form.Get(field); m.inputs[i].Value() != v {
			m.inputs[i].SetValue(v)
		}
	}
	if m.search.Value() != m.snap.SearchTerm {
		m.search.SetValue(m.snap.SearchTerm)
	}
	m.selected = min(m.selected, max(len(m.snap.Visible)-1, 0))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.unsubscribe()
		return m, tea.Quit
	}

	if m.snap.ShowDeleteModal {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.ctrl.ConfirmDelete()
		case key.Matches(msg, m.keys.Deny):
			m.ctrl.CancelDelete()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		return m, m.moveFocus(1)
	case key.Matches(msg, m.keys.Prev):
		return m, m.moveFocus(-1)
	case key.Matches(msg, m.keys.Cancel):
		if m.snap.Editing {
			m.ctrl.CancelEdit()
		}
		return m, nil
	}

	switch {
	case m.focus == focusTable:
		return m.handleTableKey(msg)
	case m.focus == focusSearch:
		return m.handleSearchKey(msg)
	default:
		return m.handleFieldKey(msg)
	}
}

func (m Model) handleFieldKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		m.ctrl.Submit()
		return m, nil
	}
	field := customer.Fields[m.focus]
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		m.ctrl.ChangeField(field, after)
	}
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.ctrl.SetSearch(after)
	}
	return m, cmd
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.snap.Visible
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(rows)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Edit):
		if len(rows) > 0 {
			m.ctrl.StartEdit(rows[m.selected].ID)
			return m, m.setFocus(0)
		}
	case key.Matches(msg, m.keys.Delete):
		if len(rows) > 0 {
			m.ctrl.RequestDelete(rows[m.selected].ID)
		}
	case key.Matches(msg, m.keys.CycleSort):
		m.ctrl.SetSort(nextSort(m.snap.SortBy))
	}
	return m, nil
}

// nextSort cycles none, then each of manager.SortOptions, then none again
func nextSort(current string) string {
	i := slices.Index(manager.SortOptions, current)
	if i+1 >= len(manager.SortOptions) {
		return manager.SortNone
	}
	return manager.SortOptions[i+1]
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	return m.setFocus((m.focus + delta + focusCount) % focusCount)
}

// setFocus moves the cursor. Leaving a form field checks its value.
func (m *Model) setFocus(next int) tea.Cmd {
	if m.focus == next {
		return nil
	}
	switch {
	case m.focus < len(m.inputs):
		m.inputs[m.focus].Blur()
		m.ctrl.BlurField(customer.Fields[m.focus])
	case m.focus == focusSearch:
		m.search.Blur()
	}
	m.focus = next
	switch {
	case next < len(m.inputs):
		return m.inputs[next].Focus()
	case next == focusSearch:
		return m.search.Focus()
	}
	return nil
}
