package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent      = lipgloss.Color("#FFD75F")
	muted       = lipgloss.Color("#777777")
	headerStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(muted)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7FF"))
	helpStyle   = lipgloss.NewStyle().Foreground(muted)
)

/* ─────────────  View  ───────────── */

func (m model) View() string {
	header := infoStyle.Render("▷ Stopped  ·  press \"Enter ↵\" to play")
	if m.playing {
		header = headerStyle.Render("▶ " + m.nowPlaying.Name)
		if m.nowPlaying.Country != "" {
			header += infoStyle.Render("  " + m.nowPlaying.Country)
		}
	}

	country := fmt.Sprintf("[ %s ]  volume %d%%", m.country(), m.app.Controller().Volume())
	if m.loading {
		country += "  loading…"
	}

	search := ""
	if m.searching || m.search.Value() != "" {
		search = m.search.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		infoStyle.Render(country),
		search,
		m.l.View(),
		statusStyle.Render(m.status),
		helpStyle.Render(m.helpLine()),
	)
}

func (m model) helpLine() string {
	var parts []string
	for _, b := range m.keys.help() {
		h := b.Help()
		if h.Desc == "" {
			parts = append(parts, h.Key)
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
