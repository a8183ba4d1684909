package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/contactdesk/backend/internal/domain/customer"
)

var fieldLabels = map[customer.Field]string{
	customer.FieldName:    "Name",
	customer.FieldEmail:   "Email",
	customer.FieldPhone:   "Phone",
	customer.FieldAddress: "Address",
}

// View implements tea.Model
func (m Model) View() string {
	s := m.snap
	var b strings.Builder

	title := "Customer Manager"
	if s.Loading {
		title += " · loading"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")

	if s.SuccessMessage != "" {
		b.WriteString(m.styles.Success.Render(s.SuccessMessage) + "\n")
	}
	if s.ErrorMessage != "" {
		b.WriteString(m.styles.Error.Render(s.ErrorMessage) + "\n")
	}

	b.WriteString(m.renderForm())
	b.WriteString(m.renderSearch())
	b.WriteString(m.styles.Section.Render(m.renderTable()))
	b.WriteString("\n")

	if s.ShowDeleteModal {
		b.WriteString(m.renderDeleteModal() + "\n")
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderForm() string {
	s := m.snap
	var b strings.Builder

	heading := "New customer"
	if s.Editing {
		heading = fmt.Sprintf("Editing customer %s", s.EditingID)
	}
	b.WriteString(m.styles.Muted.Render(heading) + "\n")

	for i, field := range customer.Fields {
		label := m.styles.Label
		if m.focus == i {
			label = m.styles.FocusLabel
		}
		b.WriteString(label.Render(fieldLabels[field]) + m.inputs[i].View() + "\n")
		if msg := s.FieldError(field); msg != "" {
			b.WriteString(m.styles.FieldError.Render(msg) + "\n")
		}
	}
	if s.GeneralError != "" {
		b.WriteString(m.styles.Error.Render(s.GeneralError) + "\n")
	}
	if !s.LastSaved.IsZero() {
		b.WriteString(m.styles.Muted.Render("Draft saved "+s.LastSaved.Format("15:04:05")) + "\n")
	}
	return b.String()
}

func (m Model) renderSearch() string {
	label := m.styles.Label
	if m.focus == focusSearch {
		label = m.styles.FocusLabel
	}
	sortBy := m.snap.SortBy
	if sortBy == "" {
		sortBy = "none"
	}
	return m.styles.Section.Render(label.Render("Search")+m.search.View()) + "\n" +
		m.styles.Muted.Render("Sort: "+sortBy) + "\n"
}

func (m Model) renderTable() string {
	if len(m.snap.Visible) == 0 {
		if m.snap.SearchTerm != "" {
			return m.styles.Muted.Render("No customers match the search")
		}
		return m.styles.Muted.Render("No customers yet")
	}
	selected := -1
	if m.focus == focusTable {
		selected = m.selected
	}
	return renderTable(m.styles, m.snap.Visible, selected)
}

func (m Model) renderDeleteModal() string {
	name := string(m.snap.DeleteTargetID)
	if c, ok := customer.Find(m.snap.Visible, m.snap.DeleteTargetID); ok {
		name = c.Name
	}
	return m.styles.Modal.Render(fmt.Sprintf("Delete %s?\n\n%s  %s", name,
		helpEntry(m.keys.Confirm), helpEntry(m.keys.Deny)))
}

func (m Model) renderHelp() string {
	bindings := []key.Binding{m.keys.Next, m.keys.Submit}
	if m.snap.Editing {
		bindings = append(bindings, m.keys.Cancel)
	}
	if m.focus == focusTable {
		bindings = []key.Binding{m.keys.Next, m.keys.Up, m.keys.Down, m.keys.Edit, m.keys.Delete, m.keys.CycleSort}
	}
	bindings = append(bindings, m.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		parts = append(parts, helpEntry(kb))
	}
	return m.styles.Muted.Render(strings.Join(parts, " · "))
}

func helpEntry(kb key.Binding) string {
	h := kb.Help()
	return h.Key + " " + h.Desc
}

// Table renders customers as a bordered table, as the list command prints them
func Table(list []customer.Customer) string {
	return renderTable(defaultStyles(), list, -1)
}

func renderTable(st styles, list []customer.Customer, selected int) string {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{c.ID.String(), c.Name, c.Email, c.Phone, string(c.Address)})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.Muted).
		Headers("ID", "Name", "Email", "Phone", "Address").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.Header
			case row == selected:
				return st.SelectedRow
			default:
				return st.Cell
			}
		}).
		String()
}
