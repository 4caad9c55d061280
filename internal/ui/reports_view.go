package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scrummaster/internal/reports"
)

type reportsState struct {
	loading   bool
	loaded    bool
	dashboard reports.Dashboard
}

func (m *App) loadReports() tea.Cmd {
	if m.cfg.Reports == nil || m.reports.loading {
		return nil
	}
	m.reports.loading = true
	client, ctx := m.cfg.Reports, m.ctx
	return func() tea.Msg {
		return reportsLoadedMsg{dashboard: reports.Load(ctx, client)}
	}
}

func (m *App) renderReports() string {
	if m.cfg.Reports == nil {
		return styleMuted().Render("Reports are not configured")
	}
	if !m.reports.loaded {
		return styleMuted().Render(m.spinner.View() + " Loading reports…")
	}
	d := m.reports.dashboard

	stats := []string{styleLabel().Render("Sprint stats")}
	if d.StatsErr != nil {
		stats = append(stats, styleError().Render("Unavailable: "+d.StatsErr.Error()))
	} else {
		for _, line := range reports.StatsLines(d.Stats) {
			stats = append(stats, styleText().Render(line))
		}
		if s := strings.TrimSpace(d.Stats.AISummary); s != "" {
			stats = append(stats, "", m.markdown(s))
		}
	}

	burndown := []string{styleLabel().Render("Burndown")}
	if d.BurndownErr != nil {
		burndown = append(burndown, styleError().Render("Unavailable: "+d.BurndownErr.Error()))
	} else if len(d.Burndown.Labels) == 0 {
		burndown = append(burndown, styleMuted().Render("No sprint data"))
	} else {
		burndown = append(burndown,
			styleKey().Render(reports.Sparkline(d.Burndown.WorkRemaining)),
			reports.BurndownTable(d.Burndown, styleBorder()))
	}

	velocity := []string{styleLabel().Render("Velocity")}
	if d.VelocityErr != nil {
		velocity = append(velocity, styleError().Render("Unavailable: "+d.VelocityErr.Error()))
	} else if len(d.Velocity.Labels) == 0 {
		velocity = append(velocity, styleMuted().Render("No completed sprints"))
	} else {
		velocity = append(velocity,
			styleKey().Render(reports.Sparkline(d.Velocity.Completed)),
			reports.VelocityTable(d.Velocity, styleBorder()))
	}

	width := m.detailWidth()
	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		stylePane(false).Render(strings.Join(burndown, "\n")),
		" ",
		stylePane(false).Render(strings.Join(velocity, "\n")),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		stylePane(false).Width(width+2).Render(strings.Join(stats, "\n")),
		charts,
	)
}
