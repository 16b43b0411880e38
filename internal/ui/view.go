package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tablesync/internal/view"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	styles := m.theme.Styles()
	box := styles.Box
	if !m.searching {
		box = styles.FocusBox
	}

	parts := []string{
		m.renderHeader(),
		box.Render(m.table.View()),
	}
	if m.searching {
		parts = append(parts, m.search.View())
	} else {
		parts = append(parts, m.renderNotice())
	}
	parts = append(parts, m.renderCommandBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	sep := styles.FaintText.Render("  │  ")

	segments := []string{
		styles.AccentText.Bold(true).Render(m.title),
		styles.MutedText.Render(m.store.Mode().String()),
		styles.Text.Render(fmt.Sprintf("page %d/%d", snap.Page, snap.PageCount)),
		styles.Text.Render(fmt.Sprintf("%d rows", snap.Total)),
	}
	if snap.Sort.Column != "" {
		segments = append(segments, styles.Text.Render("sort "+snap.Sort.Column+" "+arrow(snap.Sort.Direction)))
	}
	if snap.Search != "" {
		segments = append(segments, styles.AccentText.Render("/"+truncate(snap.Search, 24)))
	}
	if n := len(snap.Selection); n > 0 {
		segments = append(segments, styles.MarkedText.Render(fmt.Sprintf("%d selected", n)))
	}

	switch {
	case snap.IsOffline():
		segments = append(segments, styles.DangerText.Render(fmt.Sprintf("offline (%d failures)", snap.ConsecutiveFailures)))
	case snap.Loading:
		segments = append(segments, styles.WarningText.Render("loading…"))
	case snap.LastError != nil:
		segments = append(segments, styles.DangerText.Render("last request failed"))
	default:
		if !snap.LastLoaded.IsZero() {
			segments = append(segments, styles.FaintText.Render("updated "+snap.LastLoaded.Format("15:04:05")))
		}
	}

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

func (m Model) renderNotice() string {
	styles := m.theme.Styles()
	if m.notice == "" {
		return ""
	}
	style := styles.WarningText
	if m.noticeBad {
		style = styles.DangerText
	}
	return " " + style.Render(truncate(m.notice, max(m.width-2, 10)))
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	k := m.keys

	bindings := []struct{ key, desc string }{
		{k.NextPage.Help().Key, "Next"},
		{k.PrevPage.Help().Key, "Prev"},
		{"+/-", "Size"},
		{"s/S", "Sort"},
		{"/", "Search"},
		{"Space", "Select"},
		{"r", "Reload"},
		{"?", "More"},
		{"q", "Quit"},
	}
	if m.searching {
		bindings = []struct{ key, desc string }{
			{"enter", "Done"},
			{"esc", "Clear"},
		}
	}

	colon := styles.FaintText.Render(":")
	segments := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		segments = append(segments, styles.AccentText.Render(b.key)+colon+styles.MutedText.Render(b.desc))
	}
	segments = append(segments, styles.AccentText.Render("T")+colon+styles.FaintText.Render(m.theme.Name))

	return styles.Footer.Width(m.width).Render(strings.Join(segments, "  "))
}

func arrow(d view.Direction) string {
	if d == view.Desc {
		return "↓"
	}
	return "↑"
}
