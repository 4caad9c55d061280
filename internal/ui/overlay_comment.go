package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"scrummaster/internal/overlay"
)

const (
	commentTextareaLines = 4
	commentCharLimit     = 2000
	commentHistoryShown  = 5
)

// commentSubmitMsg is sent when the user saves a comment.
type commentSubmitMsg struct {
	collection string
	key        string
	text       string
	rev        overlay.Revision
}

// draftChangedMsg is sent whenever the comment text changes so the draft
// survives the overlay being closed.
type draftChangedMsg struct {
	collection string
	key        string
	text       string
	rev        overlay.Revision
}

// CommentOverlay shows an issue's local comments and edits its draft.
type CommentOverlay struct {
	collection string
	key        string
	summary    string
	comments   []string
	textarea   textarea.Model
	errorMsg   string
	// revision stamps each emitted draft and submit in keystroke order.
	revision func() overlay.Revision
}

// NewCommentOverlay opens the comment editor seeded with draft.
func NewCommentOverlay(collection, key, summary string, comments []string, draft string) *CommentOverlay {
	ta := newTextarea(overlayWidth-6, commentTextareaLines)
	ta.Placeholder = "Add comment..."
	ta.CharLimit = commentCharLimit
	ta.SetValue(draft)
	ta.Focus()
	return &CommentOverlay{
		collection: collection,
		key:        key,
		summary:    summary,
		comments:   comments,
		textarea:   ta,
	}
}

// Update handles keys for the comment overlay.
func (m *CommentOverlay) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("esc"))):
			return closeOverlay
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("ctrl+s"))):
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				m.errorMsg = "Comment cannot be empty"
				return nil
			}
			m.errorMsg = ""
			return emit(commentSubmitMsg{collection: m.collection, key: m.key, text: text, rev: m.nextRevision()})
		}
	}
	before := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	if after := m.textarea.Value(); after != before {
		m.errorMsg = ""
		return tea.Batch(cmd, emit(draftChangedMsg{collection: m.collection, key: m.key, text: after, rev: m.nextRevision()}))
	}
	return cmd
}

func (m *CommentOverlay) nextRevision() overlay.Revision {
	if m.revision == nil {
		return 0
	}
	return m.revision()
}

// View renders the comment overlay.
func (m *CommentOverlay) View() string {
	var b strings.Builder
	b.WriteString(styleLabel().Render("COMMENTS") + "\n")
	b.WriteString(styleKey().Render(m.key) + " " + styleText().Render(ansi.Truncate(m.summary, overlayWidth-len(m.key)-8, "…")) + "\n\n")

	if len(m.comments) == 0 {
		b.WriteString(styleMuted().Render("No comments yet.") + "\n")
	} else {
		shown := m.comments
		if len(shown) > commentHistoryShown {
			b.WriteString(styleMuted().Render("…") + "\n")
			shown = shown[len(shown)-commentHistoryShown:]
		}
		for _, c := range shown {
			b.WriteString(styleText().Render("• "+ansi.Truncate(c, overlayWidth-8, "…")) + "\n")
		}
	}
	b.WriteString("\n" + m.textarea.View() + "\n")
	if m.errorMsg != "" {
		b.WriteString(styleError().Render("⚠ "+m.errorMsg) + "\n")
	}
	b.WriteString("\n" + footerHints("^S", "Add", "esc", "Close (draft kept)"))
	return styleOverlay().Width(overlayWidth).Render(b.String())
}
