package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/hadar/agent-session-manager/internal/session"
)

// listView renders one tab's rows in table format
type listView struct {
	sessions []*session.Session
	cursor   int
	width    int
	height   int
	query    string
	tab      Tab
}

// View renders the list, keeping the cursor row on screen
func (m listView) View() string {
	visibleHeight := m.height
	if visibleHeight <= 0 {
		visibleHeight = 20
	}
	// Reserve 1 line for header
	dataHeight := max(visibleHeight-1, 1)

	msgsW := 5
	dateW := 12
	// prefix(2) + two separators(" │ " = 3 each) + margin(2)
	nameW := m.width - msgsW - dateW - 2 - 6 - 2
	if nameW < 12 {
		nameW = 12
	}

	lines := make([]string, 0, visibleHeight)
	header := padStr("Name", nameW) + " │ " + padStr("Msgs", msgsW) + " │ " + padStr("Updated", dateW)
	lines = append(lines, "  "+helpStyle.Render(header))

	if len(m.sessions) == 0 {
		lines = append(lines, "  "+emptyItemStyle.Render(m.emptyMessage()))
		return strings.Join(lines, "\n")
	}

	offset := 0
	if m.cursor >= dataHeight {
		offset = m.cursor - dataHeight + 1
	}
	for i := offset; i < len(m.sessions) && i < offset+dataHeight; i++ {
		lines = append(lines, m.renderRow(m.sessions[i], i == m.cursor, nameW, msgsW, dateW))
	}
	return strings.Join(lines, "\n")
}

func (m listView) emptyMessage() string {
	switch {
	case m.query != "":
		return "No matching sessions"
	case m.tab == TabTrash:
		return "Trash is empty"
	default:
		return "No sessions found"
	}
}

// renderRow renders a single row; it never exceeds the column widths
func (m listView) renderRow(s *session.Session, selected bool, nameW, msgsW, dateW int) string {
	content := padStr(s.DisplayName(), nameW) + " │ " +
		padStr(fmt.Sprintf("%d", s.MessageCount()), msgsW) + " │ " +
		padStr(s.UpdatedAt.Local().Format("Jan 2 15:04"), dateW)

	if selected {
		return selectedItemStyle.Render("▸ " + content)
	}
	if s.MessageCount() == 0 {
		return "  " + emptyItemStyle.Render(content)
	}
	return "  " + itemStyle.Render(content)
}

// padStr pads or truncates a string to EXACT display width
func padStr(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w > width {
		if width <= 2 {
			return ansi.Truncate(s, width, "")
		}
		s = ansi.Truncate(s, width, "..")
		w = ansi.StringWidth(s)
	}
	return s + strings.Repeat(" ", width-w)
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return ansi.Truncate(s, maxLen, "")
	}
	return ansi.Truncate(s, maxLen, "...")
}
