package ui

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hadar/agent-session-manager/internal/config"
	"github.com/hadar/agent-session-manager/internal/export"
	"github.com/hadar/agent-session-manager/internal/logging"
	"github.com/hadar/agent-session-manager/internal/session"
	"github.com/hadar/agent-session-manager/internal/terminal"
)

// Tab selects which collection is listed
type Tab int

const (
	TabSessions Tab = iota
	TabTrash
)

func (t Tab) String() string {
	if t == TabTrash {
		return "Trash"
	}
	return "Sessions"
}

// Focus indicates which pane has focus
type Focus int

const (
	FocusList Focus = iota
	FocusPreview
)

// Layout constants
const (
	headerHeight = 1
	statusHeight = 1
	listWidthPct = 40
)

// Store is the part of the session store the app drives
type Store interface {
	ScanActive() ([]*session.Session, error)
	ScanTrash() ([]*session.Session, error)
	MoveToTrash(project, id string) error
	Restore(sess *session.Session) error
	PurgeAllTrash() error
	SetCustomTitle(sess *session.Session, title string) error
	TrashFile(project, id string) string
}

// Options configures NewApp
type Options struct {
	Store      Store
	Config     config.AppConfig
	ConfigPath string // empty keeps settings in memory only
	Logger     *logging.Logger
	Now        func() time.Time
}

// App is the main Bubble Tea model
type App struct {
	store      Store
	cfg        config.AppConfig
	configPath string
	log        *logging.Logger
	now        func() time.Time

	// Load order; views are derived with Filter and Sort
	sessions []*session.Session
	trash    []*session.Session

	tab      Tab
	focus    Focus
	selected [2]int
	query    string
	sortKey  session.SortKey
	sortDir  session.Direction

	modal   *ModalModel
	preview *PreviewModel
	keys    KeyMap
	help    help.Model

	status    string
	statusErr bool

	width    int
	height   int
	quitting bool
}

type resumeFinishedMsg struct {
	id  string
	err error
}

// NewApp loads both collections and returns the initial state
func NewApp(opts Options) (*App, error) {
	if opts.Store == nil {
		return nil, errors.New("ui: store is required")
	}

	a := &App{
		store:      opts.Store,
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		log:        opts.Logger,
		now:        opts.Now,
		tab:        TabSessions,
		focus:      FocusList,
		sortKey:    session.SortByUpdated,
		sortDir:    session.Descending,
		modal:      NewModalModel(),
		preview:    NewPreviewModel(),
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
	if a.log == nil {
		a.log = logging.New("ui")
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.cfg.ExportPath == "" {
		a.cfg.ExportPath = config.DefaultExportPath
	}
	if a.cfg.Theme != "" {
		a.cfg.Theme = ApplyTheme(a.cfg.Theme)
	}

	if err := a.reload(); err != nil {
		return nil, err
	}
	a.keys.forTab(a.tab)
	a.preview.SetSession(a.Selected())
	return a, nil
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("Agent Session Manager")
}

// reload rescans both roots
func (a *App) reload() error {
	active, err := a.store.ScanActive()
	if err != nil {
		return fmt.Errorf("scan sessions: %w", err)
	}
	trash, err := a.store.ScanTrash()
	if err != nil {
		return fmt.Errorf("scan trash: %w", err)
	}
	a.sessions = active
	a.trash = trash
	a.clamp(TabSessions)
	a.clamp(TabTrash)
	return nil
}

// Tab returns the current tab
func (a *App) Tab() Tab { return a.tab }

// Focus returns the focused pane
func (a *App) Focus() Focus { return a.focus }

// Modal returns the open modal
func (a *App) Modal() ModalKind { return a.modal.Kind() }

// ModalValue returns the text buffer of the open modal
func (a *App) ModalValue() string { return a.modal.Value() }

// Query returns the search query applied to both tabs
func (a *App) Query() string { return a.query }

// Sort returns the sort key and direction
func (a *App) Sort() (session.SortKey, session.Direction) { return a.sortKey, a.sortDir }

// Config returns the loaded configuration
func (a *App) Config() config.AppConfig { return a.cfg }

// Status returns the one-shot status message
func (a *App) Status() string { return a.status }

// Sessions returns the active collection in load order
func (a *App) Sessions() []*session.Session { return a.sessions }

// Trash returns the trashed collection in load order
func (a *App) Trash() []*session.Session { return a.trash }

// PreviewOffset returns the preview scroll position
func (a *App) PreviewOffset() int { return a.preview.Offset() }

func (a *App) base(tab Tab) []*session.Session {
	if tab == TabTrash {
		return a.trash
	}
	return a.sessions
}

func (a *App) visibleFor(tab Tab) []*session.Session {
	return session.Sort(session.Filter(a.base(tab), a.query), a.sortKey, a.sortDir)
}

// Visible returns the filtered and sorted list of the current tab
func (a *App) Visible() []*session.Session {
	return a.visibleFor(a.tab)
}

// SelectedIndex returns the selection of the current tab; ok is false when the list is empty
func (a *App) SelectedIndex() (int, bool) {
	if len(a.Visible()) == 0 {
		return 0, false
	}
	return a.selected[a.tab], true
}

// Selected returns the selected session of the current tab, or nil
func (a *App) Selected() *session.Session {
	visible := a.Visible()
	i := a.selected[a.tab]
	if i < 0 || i >= len(visible) {
		return nil
	}
	return visible[i]
}

// clamp keeps the selection of tab inside its visible list
func (a *App) clamp(tab Tab) {
	n := len(a.visibleFor(tab))
	switch {
	case n == 0:
		a.selected[tab] = 0
	case a.selected[tab] >= n:
		a.selected[tab] = n - 1
	case a.selected[tab] < 0:
		a.selected[tab] = 0
	}
}

// reselect moves the selection of tab back onto target after a reorder
func (a *App) reselect(tab Tab, target *session.Session) {
	if target != nil {
		for i, s := range a.visibleFor(tab) {
			if s.ProjectSlug == target.ProjectSlug && s.ID == target.ID {
				a.selected[tab] = i
				return
			}
		}
	}
	a.clamp(tab)
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusErr = false
}

// fail logs err and reports it on the status line
func (a *App) fail(event, prefix string, err error) {
	a.log.Error(event, nil, err)
	a.status = prefix + ": " + err.Error()
	a.statusErr = true
}

// Update handles one event
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()

	case resumeFinishedMsg:
		a.handleResumeFinished(msg)

	case tea.KeyMsg:
		a.status = ""
		a.statusErr = false

		// ctrl+c quits even while a modal is open
		if key.Matches(msg, a.keys.ForceQuit) {
			a.quitting = true
			return a, tea.Quit
		}
		if a.modal.IsOpen() {
			cmd = a.updateModal(msg)
		} else {
			cmd = a.updateNormal(msg)
		}

	default:
		if a.modal.IsOpen() {
			a.modal, cmd = a.modal.Update(msg)
		}
	}

	a.keys.forTab(a.tab)
	a.preview.SetSession(a.Selected())
	return a, cmd
}

// updateModal routes every key to the open modal
func (a *App) updateModal(msg tea.KeyMsg) tea.Cmd {
	switch a.modal.Kind() {
	case ModalSearch:
		return a.updateSearch(msg)
	case ModalSettings:
		return a.updateSettings(msg)
	case ModalRename:
		return a.updateRename(msg)
	case ModalDeleteConfirm:
		a.updateDelete(msg)
	case ModalHelp:
		switch msg.String() {
		case "esc", "?", "q", "enter":
			a.modal.Close()
		}
	}
	return nil
}

// updateSearch re-derives the list on every edit; enter and esc keep the query
func (a *App) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		a.modal.Close()
		return nil
	}

	var cmd tea.Cmd
	a.modal, cmd = a.modal.Update(msg)
	if q := a.modal.Value(); q != a.query {
		a.query = q
		a.selected[a.tab] = 0
		a.clamp(TabSessions)
		a.clamp(TabTrash)
	}
	return cmd
}

func (a *App) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.modal.Close()
		return nil
	case "enter":
		a.confirmSettings()
		return nil
	}

	var cmd tea.Cmd
	a.modal, cmd = a.modal.Update(msg)
	return cmd
}

func (a *App) confirmSettings() {
	value, err := config.ValidateExportPath(a.modal.Value())
	if err != nil {
		a.modal.SetError(err.Error())
		a.fail("settings.invalid", "Settings", err)
		return
	}

	next := a.cfg
	next.ExportPath = value
	a.modal.Close()
	if err := a.saveConfig(next); err != nil {
		a.fail("settings.save", "Settings not saved", err)
		return
	}
	a.setStatus("Export path set to " + value)
}

func (a *App) saveConfig(next config.AppConfig) error {
	if a.configPath != "" {
		if err := config.Save(a.configPath, next); err != nil {
			return err
		}
	}
	a.cfg = next
	return nil
}

func (a *App) updateRename(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.modal.Close()
		return nil
	case "enter":
		a.confirmRename()
		return nil
	}

	var cmd tea.Cmd
	a.modal, cmd = a.modal.Update(msg)
	return cmd
}

func (a *App) confirmRename() {
	sess := a.modal.session
	if sess == nil {
		a.modal.Close()
		return
	}

	err := a.store.SetCustomTitle(sess, a.modal.Value())
	switch {
	case session.IsValidation(err):
		a.modal.SetError(err.Error())
		a.fail("session.rename", "Rename", err)
	case err != nil:
		a.modal.Close()
		a.fail("session.rename", "Rename failed", err)
	default:
		a.modal.Close()
		a.reselect(a.tab, sess)
		a.setStatus(fmt.Sprintf("Renamed to %q", sess.CustomTitle))
	}
}

// updateDelete handles the confirmation keys; everything else is ignored
func (a *App) updateDelete(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y":
		target, sess := a.modal.target, a.modal.session
		a.modal.Close()
		switch target {
		case DeleteOne:
			if err := a.trashSession(sess); err != nil {
				a.fail("trash.move", "Move to trash failed", err)
				return
			}
			a.setStatus(fmt.Sprintf("Moved %q to trash", sess.DisplayName()))
		case DeleteEmptySessions:
			a.cleanupEmpty()
		case DeleteAllTrash:
			a.emptyTrash()
		}
	case "n", "N", "esc":
		a.modal.Close()
	}
}

// trashSession moves sess from the active to the trash collection
func (a *App) trashSession(sess *session.Session) error {
	if sess == nil {
		return nil
	}
	if err := a.store.MoveToTrash(sess.ProjectSlug, sess.ID); err != nil {
		return err
	}
	a.sessions = removeSession(a.sessions, sess)
	sess.Path = a.store.TrashFile(sess.ProjectSlug, sess.ID)
	a.trash = append(a.trash, sess)
	a.clamp(TabSessions)
	a.clamp(TabTrash)
	return nil
}

// cleanupEmpty trashes every active session without messages
func (a *App) cleanupEmpty() {
	var (
		moved    int
		failures []error
	)
	for _, s := range slices.Clone(a.sessions) {
		if s.MessageCount() != 0 {
			continue
		}
		if err := a.trashSession(s); err != nil {
			failures = append(failures, err)
			continue
		}
		moved++
	}

	if len(failures) > 0 {
		a.fail("trash.cleanup", fmt.Sprintf("Moved %d, %d failed", moved, len(failures)), failures[0])
		return
	}
	a.setStatus(fmt.Sprintf("Moved %d empty sessions to trash", moved))
}

// emptyTrash purges the trash root and clears the trash collection even on failure
func (a *App) emptyTrash() {
	n := len(a.trash)
	err := a.store.PurgeAllTrash()
	a.trash = nil
	a.clamp(TabTrash)
	if err != nil {
		a.fail("trash.purge", "Empty trash failed", err)
		return
	}
	a.setStatus(fmt.Sprintf("Deleted %d sessions permanently", n))
}

func (a *App) restoreSelected() {
	sess := a.Selected()
	if sess == nil {
		return
	}
	if err := a.store.Restore(sess); err != nil {
		a.fail("trash.restore", "Restore failed", err)
		return
	}
	a.trash = removeSession(a.trash, sess)
	a.sessions = append(a.sessions, sess)
	a.clamp(TabSessions)
	a.clamp(TabTrash)
	a.setStatus(fmt.Sprintf("Restored %q", sess.DisplayName()))
}

func (a *App) countEmpty() int {
	n := 0
	for _, s := range a.sessions {
		if s.MessageCount() == 0 {
			n++
		}
	}
	return n
}

// updateNormal handles keys when no modal is open
func (a *App) updateNormal(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return tea.Quit

	case key.Matches(msg, a.keys.Up):
		if a.focus == FocusPreview {
			a.preview.ScrollUp(1)
		} else {
			a.move(-1)
		}

	case key.Matches(msg, a.keys.Down):
		if a.focus == FocusPreview {
			a.preview.ScrollDown(1)
		} else {
			a.move(1)
		}

	case key.Matches(msg, a.keys.PageUp):
		a.preview.PageUp()

	case key.Matches(msg, a.keys.PageDown):
		a.preview.PageDown()

	case key.Matches(msg, a.keys.Home):
		if a.focus == FocusPreview {
			a.preview.Top()
		} else {
			a.selected[a.tab] = 0
		}

	case key.Matches(msg, a.keys.End):
		if a.focus == FocusPreview {
			a.preview.Bottom()
		} else if n := len(a.Visible()); n > 0 {
			a.selected[a.tab] = n - 1
		}

	case key.Matches(msg, a.keys.NextTab), key.Matches(msg, a.keys.PrevTab):
		a.tab = 1 - a.tab
		a.clamp(a.tab)

	case key.Matches(msg, a.keys.FocusList):
		a.focus = FocusList

	case key.Matches(msg, a.keys.FocusView):
		a.focus = FocusPreview

	case key.Matches(msg, a.keys.Search):
		a.modal.OpenSearch(a.query)

	case key.Matches(msg, a.keys.Settings):
		a.modal.OpenSettings(a.cfg.ExportPath)

	case key.Matches(msg, a.keys.Rename):
		if sess := a.Selected(); sess != nil {
			a.modal.OpenRename(sess)
		}

	case key.Matches(msg, a.keys.Delete):
		if sess := a.Selected(); sess != nil {
			a.modal.OpenDelete(sess)
		}

	case key.Matches(msg, a.keys.Cleanup):
		if n := a.countEmpty(); n > 0 {
			a.modal.OpenCleanup(n)
		} else {
			a.setStatus("No empty sessions")
		}

	case key.Matches(msg, a.keys.Restore):
		a.restoreSelected()

	case key.Matches(msg, a.keys.EmptyTrash):
		if n := len(a.trash); n > 0 {
			a.modal.OpenEmptyTrash(n)
		} else {
			a.setStatus("Trash is already empty")
		}

	case key.Matches(msg, a.keys.Export):
		a.exportSelected()

	case key.Matches(msg, a.keys.SortKey):
		a.resort(a.sortKey.Next(), a.sortDir)

	case key.Matches(msg, a.keys.SortDir):
		a.resort(a.sortKey, a.sortDir.Flip())

	case key.Matches(msg, a.keys.Theme):
		a.cycleTheme()

	case key.Matches(msg, a.keys.Resume):
		return a.resumeSelected()

	case key.Matches(msg, a.keys.Refresh):
		a.refresh()

	case key.Matches(msg, a.keys.Help):
		a.modal.OpenHelp()
	}
	return nil
}

// move is a saturating step through the visible list
func (a *App) move(delta int) {
	n := len(a.Visible())
	if n == 0 {
		return
	}
	a.selected[a.tab] = max(0, min(n-1, a.selected[a.tab]+delta))
}

// resort changes the order and keeps the selected sessions selected
func (a *App) resort(k session.SortKey, dir session.Direction) {
	prevActive := a.selectedIn(TabSessions)
	prevTrash := a.selectedIn(TabTrash)
	a.sortKey, a.sortDir = k, dir
	a.reselect(TabSessions, prevActive)
	a.reselect(TabTrash, prevTrash)
	a.setStatus(fmt.Sprintf("Sort: %s %s", k, dir))
}

func (a *App) selectedIn(tab Tab) *session.Session {
	visible := a.visibleFor(tab)
	if i := a.selected[tab]; i >= 0 && i < len(visible) {
		return visible[i]
	}
	return nil
}

func (a *App) refresh() {
	prevActive := a.selectedIn(TabSessions)
	prevTrash := a.selectedIn(TabTrash)
	if err := a.reload(); err != nil {
		a.fail("refresh", "Refresh failed", err)
		return
	}
	a.reselect(TabSessions, prevActive)
	a.reselect(TabTrash, prevTrash)
	a.setStatus(fmt.Sprintf("Loaded %d sessions, %d in trash", len(a.sessions), len(a.trash)))
}

func (a *App) exportSelected() {
	sess := a.Selected()
	if sess == nil {
		return
	}
	dir, err := a.cfg.ResolvedExportPath()
	if err != nil {
		a.fail("session.export", "Export failed", err)
		return
	}
	path, err := export.WriteFile(sess, dir, a.now())
	if err != nil {
		a.fail("session.export", "Export failed", err)
		return
	}
	a.log.WithProject(sess.ProjectSlug).WithSession(sess.ID).Info("session.export", map[string]any{"path": path})
	a.setStatus("Exported to " + path)
}

func (a *App) cycleTheme() {
	next := a.cfg
	next.Theme = ApplyTheme(NextTheme(CurrentTheme.Name))
	if err := a.saveConfig(next); err != nil {
		a.fail("settings.save", "Theme not saved", err)
		return
	}
	a.setStatus("Theme: " + next.Theme)
}

func (a *App) resumeSelected() tea.Cmd {
	sess := a.Selected()
	if sess == nil {
		return nil
	}
	cmd, err := terminal.ResumeCommand(sess.ProjectPath, sess.ID)
	if err != nil {
		a.fail("session.resume", "Resume failed", err)
		return nil
	}
	a.log.WithProject(sess.ProjectSlug).WithSession(sess.ID).Info("session.resume", map[string]any{"dir": cmd.Dir})

	id := sess.ID
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return resumeFinishedMsg{id: id, err: err}
	})
}

// handleResumeFinished rescans since claude has appended to the session
func (a *App) handleResumeFinished(msg resumeFinishedMsg) {
	a.refresh()
	if msg.err != nil {
		a.fail("session.resume", "claude exited", msg.err)
	}
}

// updateLayout recalculates component sizes
func (a *App) updateLayout() {
	contentHeight := a.height - headerHeight - statusHeight - 2
	listW := a.width * listWidthPct / 100
	previewW := a.width - listW

	a.preview.SetSize(previewW-4, contentHeight)
	a.modal.SetWidth(a.width)
	a.help.Width = a.width
}

func removeSession(list []*session.Session, target *session.Session) []*session.Session {
	return slices.DeleteFunc(slices.Clone(list), func(s *session.Session) bool {
		return s == target
	})
}
