package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"scrummaster/internal/domain"
	"scrummaster/internal/viewsync"
)

// boardState is the cursor over the three status columns.
type boardState struct {
	col        int
	rows       [3]int
	showDetail bool
}

func (b *boardState) clamp(snap viewsync.Snapshot) {
	for i, status := range domain.Statuses {
		n := len(snap.Buckets[status])
		switch {
		case n == 0:
			b.rows[i] = 0
		case b.rows[i] >= n:
			b.rows[i] = n - 1
		}
	}
}

// selected returns the card under the cursor.
func (b *boardState) selected(snap viewsync.Snapshot) (viewsync.View, bool) {
	cards := snap.Buckets[domain.Statuses[b.col]]
	if len(cards) == 0 {
		return viewsync.View{}, false
	}
	return cards[b.rows[b.col]], true
}

// follow moves the cursor onto key after it changed column.
func (b *boardState) follow(snap viewsync.Snapshot, key string) {
	for i, status := range domain.Statuses {
		for j, card := range snap.Buckets[status] {
			if card.Key == key {
				b.col, b.rows[i] = i, j
				return
			}
		}
	}
}

func (m *App) handleBoardKey(msg tea.KeyMsg) tea.Cmd {
	snap := m.boardSnap
	card, hasCard := m.board.selected(snap)

	switch {
	case keyMatches(msg, m.keys.Left):
		m.board.col = (m.board.col + len(domain.Statuses) - 1) % len(domain.Statuses)
	case keyMatches(msg, m.keys.Right):
		m.board.col = (m.board.col + 1) % len(domain.Statuses)
	case keyMatches(msg, m.keys.Up):
		if m.board.rows[m.board.col] > 0 {
			m.board.rows[m.board.col]--
		}
	case keyMatches(msg, m.keys.Down):
		if m.board.rows[m.board.col] < len(snap.Buckets[domain.Statuses[m.board.col]])-1 {
			m.board.rows[m.board.col]++
		}
	case keyMatches(msg, m.keys.Detail):
		m.board.showDetail = !m.board.showDetail
	case keyMatches(msg, m.keys.New):
		m.modal = NewCreateOverlay(viewsync.NameBoard)
	case !hasCard:
		return nil
	case keyMatches(msg, m.keys.MovePrev):
		return m.moveCard(card.Issue, card.Status.Prev())
	case keyMatches(msg, m.keys.MoveNext):
		return m.moveCard(card.Issue, card.Status.Next())
	case keyMatches(msg, m.keys.MoveToDo):
		return m.moveCard(card.Issue, domain.StatusToDo)
	case keyMatches(msg, m.keys.MoveDoing):
		return m.moveCard(card.Issue, domain.StatusInProgress)
	case keyMatches(msg, m.keys.MoveDone):
		return m.moveCard(card.Issue, domain.StatusDone)
	case keyMatches(msg, m.keys.Edit):
		m.modal = NewEditOverlay(viewsync.NameBoard, card.Issue, true)
	case keyMatches(msg, m.keys.Comment):
		m.openComments(viewsync.NameBoard, card)
	case keyMatches(msg, m.keys.Copy):
		return m.copyKey(card.Key)
	case keyMatches(msg, m.keys.Archive):
		if card.Status == domain.StatusDone {
			return m.showToast(toastInfo, "Done issues cannot be archived")
		}
		m.modal = archiveConfirm(viewsync.NameBoard, card.Issue)
	}
	return nil
}

func archiveConfirm(collection string, issue domain.Issue) *ConfirmOverlay {
	return NewConfirmOverlay(
		"Archive "+issue.Key+"?",
		"Are you sure you want to archive this issue?\n"+issue.Summary,
		confirmAction{kind: actionArchive, collection: collection, key: issue.Key},
	)
}

// moveCard transitions issue and keeps the cursor on it once the board
// reloads. Moving onto the current status is a no-op.
func (m *App) moveCard(issue domain.Issue, to domain.Status) tea.Cmd {
	if issue.Status == to {
		return nil
	}
	board := m.cfg.Board
	key := issue.Key
	success := fmt.Sprintf("%s moved to %s", key, to.WireName())
	m.busy++
	ctx := m.ctx
	return func() tea.Msg {
		err := board.Move(ctx, key, to)
		return boardMovedMsg{mutationDoneMsg{op: "Move " + key, key: key, success: success, err: err}}
	}
}

// boardMovedMsg finishes a move and refocuses the moved card.
type boardMovedMsg struct {
	mutationDoneMsg
}

func (m *App) renderBoard() string {
	snap := m.boardSnap
	width := m.width
	if width < minWidth {
		width = minWidth * 3
	}
	colWidth := width/len(domain.Statuses) - 2
	if colWidth < 16 {
		colWidth = 16
	}

	cols := make([]string, 0, len(domain.Statuses))
	for i, status := range domain.Statuses {
		cols = append(cols, m.renderColumn(snap, i, status, colWidth))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	if m.board.showDetail {
		if card, ok := m.board.selected(snap); ok {
			body = lipgloss.JoinVertical(lipgloss.Left, body, m.renderDetail(card))
		}
	}
	return body
}

func (m *App) renderColumn(snap viewsync.Snapshot, idx int, status domain.Status, width int) string {
	cards := snap.Buckets[status]
	focused := idx == m.board.col

	var b strings.Builder
	header := fmt.Sprintf("%s (%d)", status.WireName(), len(cards))
	b.WriteString(styleColumnHeader(status).Render(header))
	b.WriteString("\n")
	b.WriteString(styleBorder().Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	if len(cards) == 0 {
		b.WriteString(styleMuted().Render("No issues"))
	}
	for j, card := range cards {
		lines := cardLines(card, width)
		text := strings.Join(lines, "\n")
		if focused && j == m.board.rows[idx] {
			text = styleSelected().Width(width).Render(text)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return stylePane(focused).Width(width + 2).Render(strings.TrimRight(b.String(), "\n"))
}

func cardLines(card viewsync.View, width int) []string {
	title := styleKey().Render(card.Key) + " " + styleText().Render(card.Summary)
	assignee := "Unassigned"
	if card.IsAssigned() {
		assignee = "Assigned: " + card.Assignee
	}
	meta := assignee
	if n := len(card.Comments); n > 0 {
		meta += fmt.Sprintf(" · %d comment%s", n, plural(n))
	}
	if card.Draft != "" {
		meta += " · draft"
	}
	return []string{
		ansi.Truncate(title, width, "…"),
		styleMuted().Render(ansi.Truncate(meta, width, "…")),
	}
}

func (m *App) renderDetail(card viewsync.View) string {
	var b strings.Builder
	b.WriteString(styleKey().Render(card.Key) + " " + styleText().Bold(true).Render(card.Summary) + "\n")
	status := card.Status.WireName()
	if card.RawStatus != "" && card.RawStatus != status {
		status += " (" + card.RawStatus + ")"
	}
	b.WriteString(styleLabel().Render("Status: ") + styleText().Render(status) + "\n")
	if card.IsAssigned() {
		b.WriteString(styleLabel().Render("Assignee: ") + styleText().Render(card.Assignee) + "\n")
	}
	b.WriteString("\n")
	if strings.TrimSpace(card.Description) == "" {
		b.WriteString(styleMuted().Render("No description") + "\n")
	} else {
		b.WriteString(m.markdown(card.Description) + "\n")
	}
	if len(card.Comments) > 0 {
		b.WriteString("\n" + styleLabel().Render("Comments") + "\n")
		for _, c := range card.Comments {
			b.WriteString(styleText().Render("• "+c) + "\n")
		}
	}
	return stylePane(false).Width(m.detailWidth()).Render(strings.TrimRight(b.String(), "\n"))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// reloadBoardFocus is used after a move so the cursor tracks the card.
func (m *App) reloadBoardFocus(key string) {
	m.boardSnap = m.cfg.Board.Snapshot()
	m.board.follow(m.boardSnap, key)
	m.board.clamp(m.boardSnap)
}
