package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/hadar/agent-session-manager/internal/export"
	"github.com/hadar/agent-session-manager/internal/session"
)

// PreviewModel shows the selected session: a fixed header over a scrollable transcript
type PreviewModel struct {
	viewport viewport.Model
	session  *session.Session
	key      string // content identity of what the viewport holds
	width    int
	height   int

	renderer      *glamour.TermRenderer
	rendererStyle string
	rendererWidth int
	cache         map[string]string // rendered transcripts by content key
}

// NewPreviewModel creates an empty preview
func NewPreviewModel() *PreviewModel {
	return &PreviewModel{
		viewport: viewport.New(0, 0),
		cache:    make(map[string]string),
	}
}

// SetSize sets the inner size of the preview pane
func (m *PreviewModel) SetSize(width, height int) {
	m.width = max(width, 0)
	m.height = max(height, 0)
	m.key = ""
	m.SetSession(m.session)
}

// SetSession shows s, re-rendering only when its content, the width or the theme changed
func (m *PreviewModel) SetSession(s *session.Session) {
	k := contentKey(s)
	if k != "" {
		k = fmt.Sprintf("%s|%d|%s", k, m.width, CurrentTheme.Name)
	}
	if k == m.key && s == m.session {
		return
	}

	sameSession := m.session != nil && s != nil &&
		m.session.ProjectSlug == s.ProjectSlug && m.session.ID == s.ID
	offset := m.viewport.YOffset

	m.session = s
	m.key = k
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-m.headerHeight(), 1)
	m.viewport.SetContent(m.renderBody())

	if sameSession {
		m.viewport.SetYOffset(offset)
	} else {
		m.viewport.GotoTop()
	}
}

// contentKey changes whenever the rendered transcript would
func contentKey(s *session.Session) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s|%d|%s", s.ProjectSlug, s.ID, s.TotalEntries, s.CustomTitle)
}

// ScrollUp scrolls the transcript up by n lines
func (m *PreviewModel) ScrollUp(n int) { m.viewport.LineUp(n) }

// ScrollDown scrolls the transcript down by n lines
func (m *PreviewModel) ScrollDown(n int) { m.viewport.LineDown(n) }

// PageUp scrolls up one page
func (m *PreviewModel) PageUp() { m.viewport.ViewUp() }

// PageDown scrolls down one page
func (m *PreviewModel) PageDown() { m.viewport.ViewDown() }

// Top jumps to the first message
func (m *PreviewModel) Top() { m.viewport.GotoTop() }

// Bottom jumps to the last message
func (m *PreviewModel) Bottom() { m.viewport.GotoBottom() }

// Offset returns the scroll position
func (m *PreviewModel) Offset() int { return m.viewport.YOffset }

// View renders the preview pane
func (m *PreviewModel) View() string {
	height := m.height
	if height <= 0 {
		height = 20
	}
	if m.session == nil {
		return m.padToHeight(helpStyle.Render("Select a session to preview"), height)
	}

	header := m.renderHeader()
	return m.padToHeight(header+"\n"+m.viewport.View(), height)
}

func (m *PreviewModel) headerHeight() int {
	if m.session == nil {
		return 0
	}
	return lipgloss.Height(m.renderHeader()) + 1
}

func (m *PreviewModel) renderHeader() string {
	s := m.session
	var lines []string

	lines = append(lines, previewTitleStyle.Render(truncate(s.DisplayName(), m.width)))
	lines = append(lines, previewMetaStyle.Render("Directory: ")+helpStyle.Render(truncate(s.ProjectPath, m.width-11)))
	lines = append(lines, previewMetaStyle.Render("Session: ")+helpStyle.Render(s.ID))

	if !s.CreatedAt.IsZero() {
		lines = append(lines, previewMetaStyle.Render("Created: ")+helpStyle.Render(s.CreatedAt.Local().Format("Jan 2 15:04")))
	}
	if !s.UpdatedAt.IsZero() {
		lines = append(lines, previewMetaStyle.Render("Updated: ")+helpStyle.Render(formatTimeAgo(s.UpdatedAt)))
	}
	lines = append(lines, previewMetaStyle.Render("Messages: ")+countStyle.Render(fmt.Sprintf("%d", s.MessageCount()))+
		helpStyle.Render(fmt.Sprintf(" · %d records · %s", s.TotalEntries, formatSize(s.Size))))

	sepWidth := max(m.width-2, 10)
	lines = append(lines, helpStyle.Render(strings.Repeat("─", sepWidth)))
	return strings.Join(lines, "\n")
}

// renderBody renders all messages of the session
func (m *PreviewModel) renderBody() string {
	if m.session == nil || m.width <= 0 {
		return ""
	}
	if m.session.MessageCount() == 0 {
		return helpStyle.Render("No messages")
	}

	if out, ok := m.cache[m.key]; ok {
		return out
	}

	parts := make([]string, 0, len(m.session.Messages))
	for _, msg := range m.session.Messages {
		parts = append(parts, m.renderMessage(msg))
	}
	out := strings.Join(parts, "\n")
	m.cache[m.key] = out
	return out
}

func (m *PreviewModel) renderMessage(msg session.Message) string {
	label := export.RoleLabel(msg.Role)
	var timeStr string
	if !msg.Timestamp.IsZero() {
		timeStr = " " + msg.Timestamp.Local().Format("15:04")
	}
	header := RoleStyle(msg.Role.String()).Render(label) + previewMetaStyle.Render(timeStr)

	return header + "\n" + m.renderMarkdown(msg.Content)
}

// renderMarkdown renders content with glamour, falling back to plain wrapped text
func (m *PreviewModel) renderMarkdown(content string) string {
	r, err := m.markdownRenderer()
	if err == nil {
		if out, err := r.Render(content); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return itemStyle.Render(wordwrap.String(content, max(m.width-2, 10)))
}

// markdownRenderer rebuilds the renderer when the width or theme changes
func (m *PreviewModel) markdownRenderer() (*glamour.TermRenderer, error) {
	style := CurrentTheme.Markdown
	if style == "" {
		style = "dark"
	}
	if m.renderer != nil && m.rendererStyle == style && m.rendererWidth == m.width {
		return m.renderer, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(m.width-2, 10)),
	)
	if err != nil {
		return nil, err
	}
	m.renderer = r
	m.rendererStyle = style
	m.rendererWidth = m.width
	clear(m.cache)
	return r, nil
}

// padLine pads a line to the full width
func (m *PreviewModel) padLine(line string) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < m.width {
		return line + strings.Repeat(" ", m.width-lineWidth)
	}
	return line
}

// padToHeight pads content to fill the height
func (m *PreviewModel) padToHeight(content string, height int) string {
	lines := strings.Split(content, "\n")
	result := make([]string, height)
	for i := 0; i < height; i++ {
		if i < len(lines) {
			result[i] = m.padLine(lines[i])
		} else {
			result[i] = m.padLine("")
		}
	}
	return strings.Join(result, "\n")
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2")
	}
}
