package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hadar/agent-session-manager/internal/session"
)

// ModalKind identifies the open modal
type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalSearch
	ModalSettings
	ModalRename
	ModalDeleteConfirm
	ModalHelp
)

var modalNames = map[ModalKind]string{
	ModalNone:          "none",
	ModalSearch:        "search",
	ModalSettings:      "settings",
	ModalRename:        "rename",
	ModalDeleteConfirm: "delete-confirm",
	ModalHelp:          "help",
}

func (k ModalKind) String() string {
	return modalNames[k]
}

// DeleteTarget is what a DeleteConfirm modal acts on
type DeleteTarget int

const (
	DeleteOne DeleteTarget = iota
	DeleteEmptySessions
	DeleteAllTrash
)

// ModalModel holds the state of the open modal
type ModalModel struct {
	kind    ModalKind
	input   textinput.Model
	title   string
	message string
	errMsg  string

	target  DeleteTarget
	session *session.Session // rename or single delete target
	count   int              // sessions affected by a bulk delete
}

// NewModalModel creates a closed modal
func NewModalModel() *ModalModel {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	return &ModalModel{
		input: ti,
	}
}

func (m *ModalModel) openInput(kind ModalKind, title, value, placeholder string) {
	m.kind = kind
	m.title = title
	m.message = ""
	m.errMsg = ""
	m.session = nil
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.Focus()
	m.input.CursorEnd()
}

// OpenSearch opens the search modal pre-filled with the current query
func (m *ModalModel) OpenSearch(query string) {
	m.openInput(ModalSearch, "Search", query, "name or session id")
	m.input.Prompt = searchPromptStyle.Render("/")
}

// OpenSettings opens the settings modal pre-filled with the export path
func (m *ModalModel) OpenSettings(exportPath string) {
	m.openInput(ModalSettings, "Export Path", exportPath, "~/claude-exports")
	m.input.Prompt = "> "
}

// OpenRename opens the rename modal for s
func (m *ModalModel) OpenRename(s *session.Session) {
	m.openInput(ModalRename, "Rename Session", s.DisplayName(), "title")
	m.input.Prompt = "> "
	m.session = s
}

// OpenDelete opens the confirmation modal for a single session
func (m *ModalModel) OpenDelete(s *session.Session) {
	m.openConfirm(DeleteOne, "Move to Trash",
		fmt.Sprintf("Move %q to trash?\n%d messages · %s", s.DisplayName(), s.MessageCount(), s.ShortID()))
	m.session = s
	m.count = 1
}

// OpenCleanup opens the confirmation modal for trashing empty sessions
func (m *ModalModel) OpenCleanup(n int) {
	m.openConfirm(DeleteEmptySessions, "Clean Up",
		fmt.Sprintf("Move %d sessions without messages to trash?", n))
	m.count = n
}

// OpenEmptyTrash opens the confirmation modal for purging the trash
func (m *ModalModel) OpenEmptyTrash(n int) {
	m.openConfirm(DeleteAllTrash, "Empty Trash",
		fmt.Sprintf("Permanently delete %d sessions?\nThis cannot be undone.", n))
	m.count = n
}

func (m *ModalModel) openConfirm(target DeleteTarget, title, message string) {
	m.kind = ModalDeleteConfirm
	m.target = target
	m.title = title
	m.message = message
	m.errMsg = ""
	m.session = nil
	m.input.Blur()
}

// OpenHelp opens the key binding overview
func (m *ModalModel) OpenHelp() {
	m.kind = ModalHelp
	m.title = "Keys"
	m.input.Blur()
}

// Close closes the modal
func (m *ModalModel) Close() {
	m.kind = ModalNone
	m.session = nil
	m.errMsg = ""
	m.input.Blur()
}

// Kind returns the open modal kind
func (m *ModalModel) Kind() ModalKind {
	return m.kind
}

// IsOpen returns whether a modal is open
func (m *ModalModel) IsOpen() bool {
	return m.kind != ModalNone
}

// Value returns the input buffer
func (m *ModalModel) Value() string {
	return m.input.Value()
}

// SetError shows a validation message inside the modal
func (m *ModalModel) SetError(msg string) {
	m.errMsg = msg
}

// Update forwards a message to the text input
func (m *ModalModel) Update(msg tea.Msg) (*ModalModel, tea.Cmd) {
	switch m.kind {
	case ModalSearch, ModalSettings, ModalRename:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if _, ok := msg.(tea.KeyMsg); ok {
			m.errMsg = ""
		}
		return m, cmd
	}
	return m, nil
}

// SetWidth fits the input to the screen
func (m *ModalModel) SetWidth(width int) {
	w := width/2 - 8
	if w < 20 {
		w = 20
	}
	m.input.Width = w
}

// View renders the modal box. Search renders inline and help is drawn by the app.
func (m *ModalModel) View() string {
	switch m.kind {
	case ModalSettings, ModalRename:
		return dialogStyle.Render(m.renderInputDialog())
	case ModalDeleteConfirm:
		return dangerDialogStyle.Render(m.renderConfirmDialog())
	}
	return ""
}

// SearchView renders the one-line search prompt
func (m *ModalModel) SearchView() string {
	if m.kind != ModalSearch {
		return ""
	}
	return m.input.View()
}

func (m *ModalModel) renderInputDialog() string {
	title := dialogTitleStyle.Render(m.title)
	input := inputStyle.Render(m.input.View())
	hint := helpStyle.Render("Enter to confirm • Esc to cancel")

	parts := []string{title, input}
	if m.errMsg != "" {
		parts = append(parts, statusErrorStyle.Render(m.errMsg))
	}
	parts = append(parts, "", hint)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *ModalModel) renderConfirmDialog() string {
	title := dialogTitleStyle.Render(m.title)
	hint := helpKeyStyle.Render("y") + helpStyle.Render(" confirm • ") +
		helpKeyStyle.Render("n/esc") + helpStyle.Render(" cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, m.message, "", hint)
}
