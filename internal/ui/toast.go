package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	appErrors "scrummaster/internal/errors"
)

const (
	toastDuration      = 4 * time.Second
	errorToastDuration = 10 * time.Second
	toastMaxWidth      = 72
)

type toastKind int

const (
	toastSuccess toastKind = iota
	toastInfo
	toastError
)

type toast struct {
	id   int
	kind toastKind
	text string
}

func (m *App) showToast(kind toastKind, text string) tea.Cmd {
	m.toast.id++
	m.toast.kind = kind
	m.toast.text = text
	d := toastDuration
	if kind == toastError {
		d = errorToastDuration
	}
	return scheduleToastExpiry(m.toast.id, d)
}

func (m *App) showError(prefix string, err error) tea.Cmd {
	text := err.Error()
	if prefix != "" {
		text = prefix + ": " + text
	}
	if !appErrors.IsRetryable(err) {
		return m.showToast(toastInfo, text)
	}
	return m.showToast(toastError, text)
}

func (m *App) expireToast(id int) {
	if id == m.toast.id {
		m.toast.text = ""
	}
}

func (m *App) renderToast() string {
	if m.toast.text == "" {
		return ""
	}
	text := ansi.Truncate(m.toast.text, toastMaxWidth, "…")
	switch m.toast.kind {
	case toastError:
		return styleErrorToast().Render("⚠ " + text)
	case toastInfo:
		return styleInfoToast().Render(text)
	default:
		return styleSuccessToast().Render("✓ " + text)
	}
}
