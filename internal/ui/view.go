package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hadar/agent-session-manager/internal/session"
)

// View renders the application
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	if a.width == 0 || a.height == 0 {
		return ""
	}

	switch a.modal.Kind() {
	case ModalHelp:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.renderHelp())
	case ModalSettings, ModalRename, ModalDeleteConfirm:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.modal.View())
	}

	header := a.renderHeader()
	headerPadded := header + strings.Repeat(" ", max(0, a.width-lipgloss.Width(header)))

	contentHeight := a.height - headerHeight - statusHeight - 2
	listW := a.width * listWidthPct / 100
	previewW := a.width - listW

	listStyle := panelStyle
	previewStyle := panelStyle
	if a.focus == FocusList {
		listStyle = activePanelStyle
	} else {
		previewStyle = activePanelStyle
	}

	list := listView{
		sessions: a.Visible(),
		cursor:   a.selected[a.tab],
		width:    listW - 4,
		height:   contentHeight,
		query:    a.query,
		tab:      a.tab,
	}
	listPanel := listStyle.Width(listW - 2).Height(contentHeight).Render(list.View())
	previewPanel := previewStyle.Width(previewW - 2).Height(contentHeight).Render(a.preview.View())
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	status := a.renderStatusBar()
	statusPadded := status + strings.Repeat(" ", max(0, a.width-lipgloss.Width(status)))

	return lipgloss.JoinVertical(lipgloss.Left, headerPadded, mainContent, statusPadded)
}

// renderHeader shows the title, the tabs with their counts and the sort order
func (a *App) renderHeader() string {
	tabs := []struct {
		tab   Tab
		count int
	}{
		{TabSessions, len(a.sessions)},
		{TabTrash, len(a.trash)},
	}

	parts := []string{titleStyle.Render("Agent Sessions")}
	for _, t := range tabs {
		label := fmt.Sprintf("%s (%d)", t.tab, t.count)
		if t.tab == a.tab {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}

	arrow := "↓"
	if a.sortDir == session.Ascending {
		arrow = "↑"
	}
	parts = append(parts, helpStyle.Render(fmt.Sprintf(" sort: %s %s", a.sortKey, arrow)))
	if a.query != "" {
		parts = append(parts, searchPromptStyle.Render(" /")+matchHighlightStyle.Render(a.query))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderStatusBar shows the search prompt, or help on the left and the status on the right
func (a *App) renderStatusBar() string {
	if a.modal.Kind() == ModalSearch {
		return " " + a.modal.SearchView()
	}

	helpText := a.help.ShortHelpView(a.keys.ShortHelp())
	if a.status == "" {
		return helpText
	}

	style := statusStyle
	if a.statusErr {
		style = statusErrorStyle
	}
	msg := style.Render(truncate(a.status, max(a.width/2, 20)))
	gap := a.width - lipgloss.Width(helpText) - lipgloss.Width(msg) - 2
	if gap < 1 {
		return helpStyle.Render("│ ") + msg
	}
	return helpText + strings.Repeat(" ", gap) + helpStyle.Render("│ ") + msg
}

func (a *App) renderHelp() string {
	title := dialogTitleStyle.Render("Keys")
	body := a.help.FullHelpView(a.keys.FullHelp())
	hint := helpStyle.Render("esc or ? to close")
	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, body, "", hint))
}
