package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"scrummaster/internal/domain"
	"scrummaster/internal/jira"
)

type issueFormMode int

const (
	issueFormCreate issueFormMode = iota
	issueFormEdit
)

const (
	fieldSummary = iota
	fieldDescription
	fieldStatus
	fieldAssignee
)

// issueFormSubmitMsg carries a validated create or edit.
type issueFormSubmitMsg struct {
	mode       issueFormMode
	collection string
	key        string
	summary    string
	desc       string
	fields     jira.UpdateFields
}

// IssueOverlay is the create and edit form. Status and assignee are only
// offered when editing board issues.
type IssueOverlay struct {
	mode       issueFormMode
	collection string
	key        string
	fullForm   bool

	summary     textinput.Model
	description textarea.Model
	status      textinput.Model
	assignee    textinput.Model
	focus       int
	errorMsg    string
}

// NewCreateOverlay opens an empty form for a new issue.
func NewCreateOverlay(collection string) *IssueOverlay {
	m := newIssueOverlay(issueFormCreate, collection, "", false)
	return m
}

// NewEditOverlay opens a form seeded with issue. full enables the status
// and assignee fields.
func NewEditOverlay(collection string, issue domain.Issue, full bool) *IssueOverlay {
	m := newIssueOverlay(issueFormEdit, collection, issue.Key, full)
	m.summary.SetValue(issue.Summary)
	m.description.SetValue(issue.Description)
	m.status.SetValue(issue.Status.WireName())
	m.assignee.SetValue(issue.Assignee)
	return m
}

func newIssueOverlay(mode issueFormMode, collection, key string, full bool) *IssueOverlay {
	summary := textinput.New()
	summary.Prompt = ""
	summary.Placeholder = "Summary"
	summary.Width = overlayWidth - 8
	summary.Focus()

	desc := newTextarea(overlayWidth-6, 5)
	desc.Placeholder = "Description"

	status := textinput.New()
	status.Prompt = ""
	status.Placeholder = "To Do / In Progress / Done"
	status.Width = overlayWidth - 8

	assignee := textinput.New()
	assignee.Prompt = ""
	assignee.Placeholder = "Unassigned"
	assignee.Width = overlayWidth - 8

	return &IssueOverlay{
		mode:        mode,
		collection:  collection,
		key:         key,
		fullForm:    full,
		summary:     summary,
		description: desc,
		status:      status,
		assignee:    assignee,
	}
}

func (m *IssueOverlay) fieldCount() int {
	if m.fullForm {
		return 4
	}
	return 2
}

func (m *IssueOverlay) setFocus(idx int) {
	m.focus = (idx + m.fieldCount()) % m.fieldCount()
	m.summary.Blur()
	m.description.Blur()
	m.status.Blur()
	m.assignee.Blur()
	switch m.focus {
	case fieldSummary:
		m.summary.Focus()
	case fieldDescription:
		m.description.Focus()
	case fieldStatus:
		m.status.Focus()
	case fieldAssignee:
		m.assignee.Focus()
	}
}

// Update handles keys for the form.
func (m *IssueOverlay) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("esc"))):
			return closeOverlay
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("tab"))):
			m.setFocus(m.focus + 1)
			return nil
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("shift+tab"))):
			m.setFocus(m.focus - 1)
			return nil
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("ctrl+s"))):
			return m.submit()
		}
	}
	var cmd tea.Cmd
	switch m.focus {
	case fieldSummary:
		m.summary, cmd = m.summary.Update(msg)
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
	case fieldStatus:
		m.status, cmd = m.status.Update(msg)
	case fieldAssignee:
		m.assignee, cmd = m.assignee.Update(msg)
	}
	return cmd
}

func (m *IssueOverlay) submit() tea.Cmd {
	summary := strings.TrimSpace(m.summary.Value())
	desc := m.description.Value()
	out := issueFormSubmitMsg{mode: m.mode, collection: m.collection, key: m.key, summary: summary, desc: desc}

	if m.mode == issueFormCreate {
		if summary == "" {
			m.errorMsg = "Summary is required"
			return nil
		}
		m.errorMsg = ""
		return emit(out)
	}

	fields := jira.UpdateFields{Summary: jira.String(summary), Description: jira.String(desc)}
	if m.fullForm {
		status, ok := domain.ParseStatus(m.status.Value())
		if !ok {
			m.errorMsg = "Status must be To Do, In Progress or Done"
			return nil
		}
		fields.Status = jira.StatusPtr(status)
		fields.Assignee = jira.String(strings.TrimSpace(m.assignee.Value()))
	}
	m.errorMsg = ""
	out.fields = fields
	return emit(out)
}

// View renders the form.
func (m *IssueOverlay) View() string {
	var b strings.Builder
	title := "NEW ISSUE"
	if m.mode == issueFormEdit {
		title = "EDIT " + m.key
	}
	b.WriteString(styleLabel().Render(title) + "\n\n")
	b.WriteString(styleMuted().Render("Summary") + "\n" + m.summary.View() + "\n\n")
	b.WriteString(styleMuted().Render("Description") + "\n" + m.description.View() + "\n")
	if m.fullForm {
		b.WriteString("\n" + styleMuted().Render("Status") + "\n" + m.status.View() + "\n")
		b.WriteString("\n" + styleMuted().Render("Assignee") + "\n" + m.assignee.View() + "\n")
	}
	if m.errorMsg != "" {
		b.WriteString("\n" + styleError().Render("⚠ "+m.errorMsg) + "\n")
	}
	b.WriteString("\n" + footerHints("tab", "Next field", "^S", "Save", "esc", "Cancel"))
	return styleOverlay().Width(overlayWidth).Render(b.String())
}
