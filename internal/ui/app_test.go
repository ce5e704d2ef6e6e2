package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadar/agent-session-manager/internal/config"
	"github.com/hadar/agent-session-manager/internal/session"
)

var baseTime = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func userEntry(text string, ts time.Time) string {
	return fmt.Sprintf(`{"type":"user","message":{"role":"user","content":%q},"uuid":"u-%d","timestamp":%q}`,
		text, ts.UnixNano(), ts.Format(time.RFC3339))
}

func assistantEntry(text string, ts time.Time) string {
	return fmt.Sprintf(`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":%q}]},"uuid":"a-%d","timestamp":%q}`,
		text, ts.UnixNano(), ts.Format(time.RFC3339))
}

func conversation(n int, start time.Time) []string {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * time.Minute)
		if i%2 == 0 {
			lines = append(lines, userEntry(fmt.Sprintf("question %d", i), ts))
		} else {
			lines = append(lines, assistantEntry(fmt.Sprintf("answer %d", i), ts))
		}
	}
	return lines
}

func writeSession(t *testing.T, root, project, id string, mtime time.Time, lines ...string) {
	t.Helper()
	dir := filepath.Join(root, project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, id+".jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

type testEnv struct {
	app        *App
	store      *session.Store
	configPath string
	exportDir  string
}

// newTestEnv builds three active sessions (beta newest, then alpha, then an
// empty one) and one trashed session.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := session.NewStore(session.RootsIn(t.TempDir()))
	require.NoError(t, err)
	roots := store.Roots()

	writeSession(t, roots.Active, "-home-me-alpha-project", "alpha-1", baseTime, conversation(2, baseTime)...)
	writeSession(t, roots.Active, "-home-me-beta", "beta-1", baseTime, conversation(3, baseTime.Add(24*time.Hour))...)
	writeSession(t, roots.Active, "-home-me-gamma", "empty-1", baseTime.Add(-24*time.Hour))
	writeSession(t, roots.Trash, "-home-me-old", "trash-1", baseTime, conversation(1, baseTime.Add(-48*time.Hour))...)

	return newTestEnvWithStore(t, store)
}

func newTestEnvWithStore(t *testing.T, store *session.Store) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		store:      store,
		configPath: filepath.Join(dir, "config.json"),
		exportDir:  filepath.Join(dir, "exports"),
	}

	cfg := config.Default()
	cfg.ExportPath = env.exportDir
	app, err := NewApp(Options{Store: store, Config: cfg, ConfigPath: env.configPath})
	require.NoError(t, err)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	env.app = app
	return env
}

func keyPress(s string) tea.KeyMsg {
	special := map[string]tea.KeyType{
		"enter":     tea.KeyEnter,
		"esc":       tea.KeyEsc,
		"tab":       tea.KeyTab,
		"ctrl+c":    tea.KeyCtrlC,
		"ctrl+u":    tea.KeyCtrlU,
		"ctrl+r":    tea.KeyCtrlR,
		"backspace": tea.KeyBackspace,
		"pgdown":    tea.KeyPgDown,
		"pgup":      tea.KeyPgUp,
		"up":        tea.KeyUp,
		"down":      tea.KeyDown,
		"home":      tea.KeyHome,
		"end":       tea.KeyEnd,
	}
	if kt, ok := special[s]; ok {
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a *App, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(keyPress(k))
	}
	return cmd
}

func typeText(a *App, text string) {
	for _, r := range text {
		a.Update(keyPress(string(r)))
	}
}

func ids(sessions []*session.Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}

func selectedID(a *App) string {
	if s := a.Selected(); s != nil {
		return s.ID
	}
	return ""
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewAppInitialState(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	assert.Equal(t, TabSessions, a.Tab())
	assert.Equal(t, FocusList, a.Focus())
	assert.Equal(t, ModalNone, a.Modal())
	key, dir := a.Sort()
	assert.Equal(t, session.SortByUpdated, key)
	assert.Equal(t, session.Descending, dir)

	assert.Len(t, a.Sessions(), 3)
	assert.Len(t, a.Trash(), 1)
	assert.Equal(t, []string{"beta-1", "alpha-1", "empty-1"}, ids(a.Visible()))
	assert.Equal(t, "beta-1", selectedID(a))
	assert.NotEmpty(t, a.View())
}

func TestNewAppRequiresStore(t *testing.T) {
	_, err := NewApp(Options{})
	assert.Error(t, err)
}

func TestNavigationClampsPerTab(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "up")
	idx, ok := a.SelectedIndex()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	press(a, "j", "j", "j", "j", "j")
	idx, _ = a.SelectedIndex()
	assert.Equal(t, 2, idx)

	press(a, "tab")
	assert.Equal(t, TabTrash, a.Tab())
	assert.Equal(t, "trash-1", selectedID(a))

	press(a, "tab")
	assert.Equal(t, TabSessions, a.Tab())
	assert.Equal(t, "empty-1", selectedID(a))

	press(a, "home")
	assert.Equal(t, "beta-1", selectedID(a))
	press(a, "end")
	assert.Equal(t, "empty-1", selectedID(a))
}

func TestFocusSwitch(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "l")
	assert.Equal(t, FocusPreview, a.Focus())
	press(a, "j")
	assert.Equal(t, "beta-1", selectedID(a), "moving in the preview must not change the selection")
	press(a, "h")
	assert.Equal(t, FocusList, a.Focus())
}

func TestDeleteMovesToTrash(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	press(a, "d")
	require.Equal(t, ModalDeleteConfirm, a.Modal())

	press(a, "n")
	assert.Equal(t, ModalNone, a.Modal())
	assert.Len(t, a.Sessions(), 3)

	press(a, "d", "y")
	assert.Equal(t, ModalNone, a.Modal())
	assert.Equal(t, []string{"alpha-1", "empty-1"}, ids(a.Visible()))
	assert.Len(t, a.Trash(), 2)
	assert.Contains(t, a.Status(), "trash")

	trashed := env.store.TrashFile("-home-me-beta", "beta-1")
	assert.FileExists(t, trashed)
	assert.NoFileExists(t, env.store.ActiveFile("-home-me-beta", "beta-1"))

	for _, s := range a.Trash() {
		if s.ID == "beta-1" {
			assert.Equal(t, trashed, s.Path)
		}
	}
}

func TestDeleteOnlySession(t *testing.T) {
	store, err := session.NewStore(session.RootsIn(t.TempDir()))
	require.NoError(t, err)
	writeSession(t, store.Roots().Active, "-home-me-solo", "solo-1", baseTime, conversation(2, baseTime)...)

	a := newTestEnvWithStore(t, store).app
	press(a, "d", "y")

	assert.Empty(t, a.Visible())
	assert.Nil(t, a.Selected())
	_, ok := a.SelectedIndex()
	assert.False(t, ok)
	assert.Len(t, a.Trash(), 1)
	assert.Contains(t, a.View(), "No sessions found")

	// Actions on an empty list are no-ops
	press(a, "d", "j", "R", "e")
	assert.Equal(t, ModalNone, a.Modal())
}

func TestModalCapturesKeys(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "d")
	require.Equal(t, ModalDeleteConfirm, a.Modal())

	cmd := press(a, "q")
	assert.False(t, isQuit(cmd))
	press(a, "tab", "s", "j", "d")
	assert.Equal(t, ModalDeleteConfirm, a.Modal())
	assert.Equal(t, TabSessions, a.Tab())
	key, _ := a.Sort()
	assert.Equal(t, session.SortByUpdated, key)
	assert.Equal(t, "beta-1", selectedID(a))

	press(a, "esc")
	assert.Equal(t, ModalNone, a.Modal())
	assert.Len(t, a.Sessions(), 3)
}

func TestTabOnlyBindings(t *testing.T) {
	a := newTestEnv(t).app

	// Restore and empty trash do nothing on the sessions tab
	press(a, "r", "x")
	assert.Equal(t, ModalNone, a.Modal())
	assert.Len(t, a.Trash(), 1)

	// Delete, cleanup and resume do nothing on the trash tab
	press(a, "tab", "d")
	assert.Equal(t, ModalNone, a.Modal())
	press(a, "c")
	assert.Equal(t, ModalNone, a.Modal())
	cmd := press(a, "enter")
	assert.Nil(t, cmd)
}

func TestSearchFiltersBothTabs(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "/")
	require.Equal(t, ModalSearch, a.Modal())
	typeText(a, "alpha")
	assert.Equal(t, "alpha", a.Query())
	assert.Equal(t, []string{"alpha-1"}, ids(a.Visible()))

	press(a, "enter")
	assert.Equal(t, ModalNone, a.Modal())
	assert.Equal(t, "alpha", a.Query())

	press(a, "tab")
	assert.Empty(t, a.Visible())
	assert.Contains(t, a.View(), "No matching sessions")
	press(a, "tab")

	// esc keeps the query
	press(a, "/", "esc")
	assert.Equal(t, "alpha", a.Query())

	press(a, "/", "ctrl+u", "enter")
	assert.Equal(t, "", a.Query())
	assert.Len(t, a.Visible(), 3)
}

func TestSearchMatchesSessionID(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "/")
	typeText(a, "EMPTY-")
	assert.Equal(t, []string{"empty-1"}, ids(a.Visible()))
	assert.Equal(t, "empty-1", selectedID(a))
}

func TestSearchTypesCommandKeys(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "/")
	cmd := press(a, "q")
	assert.False(t, isQuit(cmd))
	typeText(a, "dx")
	assert.Equal(t, "qdx", a.Query())
	assert.Equal(t, ModalSearch, a.Modal())
}

func TestSettingsSave(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	press(a, "g")
	require.Equal(t, ModalSettings, a.Modal())
	assert.Equal(t, env.exportDir, a.ModalValue())

	target := filepath.Join(t.TempDir(), "notes")
	press(a, "ctrl+u")
	typeText(a, target)
	press(a, "enter")

	assert.Equal(t, ModalNone, a.Modal())
	assert.Equal(t, target, a.Config().ExportPath)

	saved, err := config.Load(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, target, saved.ExportPath)
}

func TestSettingsRejectsRelativePath(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	press(a, "g", "ctrl+u")
	typeText(a, "relative/dir")
	press(a, "enter")

	assert.Equal(t, ModalSettings, a.Modal(), "invalid input keeps the modal open")
	assert.Equal(t, env.exportDir, a.Config().ExportPath)
	assert.NotEmpty(t, a.Status())
	assert.NoFileExists(t, env.configPath)

	press(a, "esc")
	assert.Equal(t, ModalNone, a.Modal())
	assert.Equal(t, env.exportDir, a.Config().ExportPath)
}

func TestSettingsKeepsTilde(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	press(a, "g", "ctrl+u")
	typeText(a, "~/exports")
	press(a, "enter")

	assert.Equal(t, ModalNone, a.Modal())
	assert.Equal(t, "~/exports", a.Config().ExportPath)
}

func TestSortCycleKeepsSelection(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "j")
	require.Equal(t, "alpha-1", selectedID(a))

	press(a, "s")
	key, dir := a.Sort()
	assert.Equal(t, session.SortByName, key)
	assert.Equal(t, session.Descending, dir)
	assert.Equal(t, "alpha-1", selectedID(a))
	assert.Contains(t, a.Status(), "name")

	press(a, "s")
	key, _ = a.Sort()
	assert.Equal(t, session.SortByMessages, key)
	assert.Equal(t, []string{"beta-1", "alpha-1", "empty-1"}, ids(a.Visible()))

	press(a, "S")
	_, dir = a.Sort()
	assert.Equal(t, session.Ascending, dir)
	assert.Equal(t, []string{"empty-1", "alpha-1", "beta-1"}, ids(a.Visible()))
	assert.Equal(t, "alpha-1", selectedID(a))

	press(a, "s")
	key, _ = a.Sort()
	assert.Equal(t, session.SortByUpdated, key)
}

func TestStatusClearedOnNextKey(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	press(a, "e")
	require.Contains(t, a.Status(), "Exported to")

	entries, err := os.ReadDir(env.exportDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	press(a, "j")
	assert.Empty(t, a.Status())
}

func TestCleanupEmptySessions(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "c")
	require.Equal(t, ModalDeleteConfirm, a.Modal())
	press(a, "y")

	assert.Equal(t, []string{"beta-1", "alpha-1"}, ids(a.Visible()))
	assert.Len(t, a.Trash(), 2)

	press(a, "c")
	assert.Equal(t, ModalNone, a.Modal())
	assert.Equal(t, "No empty sessions", a.Status())
}

func TestRestore(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	press(a, "tab", "r")
	assert.Empty(t, a.Trash())
	assert.Len(t, a.Sessions(), 4)
	assert.FileExists(t, env.store.ActiveFile("-home-me-old", "trash-1"))
	assert.Contains(t, a.View(), "Trash is empty")
}

func TestEmptyTrash(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	press(a, "tab", "x")
	require.Equal(t, ModalDeleteConfirm, a.Modal())
	press(a, "y")

	assert.Empty(t, a.Trash())
	assert.Equal(t, "Deleted 1 sessions permanently", a.Status())

	entries, err := os.ReadDir(env.store.Roots().Trash)
	require.NoError(t, err)
	assert.Empty(t, entries)

	press(a, "x")
	assert.Equal(t, ModalNone, a.Modal())
}

type failingPurgeStore struct {
	*session.Store
}

func (failingPurgeStore) PurgeAllTrash() error {
	return errors.New("disk on fire")
}

func TestEmptyTrashFailureStillClears(t *testing.T) {
	env := newTestEnv(t)
	app, err := NewApp(Options{Store: failingPurgeStore{env.store}, Config: config.Default()})
	require.NoError(t, err)

	press(app, "tab", "x", "y")
	assert.Empty(t, app.Trash())
	assert.Contains(t, app.Status(), "disk on fire")
}

func TestRename(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	press(a, "R")
	require.Equal(t, ModalRename, a.Modal())
	assert.Equal(t, "home-me-beta", a.ModalValue())

	press(a, "ctrl+u")
	typeText(a, "Release checklist")
	press(a, "enter")

	assert.Equal(t, ModalNone, a.Modal())
	assert.Equal(t, "Release checklist", a.Selected().DisplayName())

	rescanned, err := env.store.ScanActive()
	require.NoError(t, err)
	for _, s := range rescanned {
		if s.ID == "beta-1" {
			assert.Equal(t, "Release checklist", s.CustomTitle)
		}
	}
}

func TestRenameRejectsEmptyTitle(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "R", "ctrl+u", "enter")
	assert.Equal(t, ModalRename, a.Modal())
	assert.NotEmpty(t, a.Status())
	assert.Empty(t, a.Selected().CustomTitle)
}

func TestQuit(t *testing.T) {
	a := newTestEnv(t).app
	assert.True(t, isQuit(press(a, "q")))
	assert.Empty(t, a.View())

	b := newTestEnv(t).app
	press(b, "/")
	assert.True(t, isQuit(press(b, "ctrl+c")), "ctrl+c quits even inside a modal")
}

func TestHelpModal(t *testing.T) {
	a := newTestEnv(t).app

	press(a, "?")
	require.Equal(t, ModalHelp, a.Modal())
	assert.Contains(t, a.View(), "Keys")

	assert.False(t, isQuit(press(a, "q")))
	assert.Equal(t, ModalNone, a.Modal())
}

func TestPreviewScroll(t *testing.T) {
	store, err := session.NewStore(session.RootsIn(t.TempDir()))
	require.NoError(t, err)
	writeSession(t, store.Roots().Active, "-home-me-long", "long-1", baseTime, conversation(60, baseTime)...)

	a := newTestEnvWithStore(t, store).app
	assert.Equal(t, 0, a.PreviewOffset())

	press(a, "pgdown")
	assert.Greater(t, a.PreviewOffset(), 0)

	press(a, "l", "home")
	assert.Equal(t, 0, a.PreviewOffset())
	press(a, "j")
	assert.Equal(t, 1, a.PreviewOffset())
	press(a, "end")
	assert.Greater(t, a.PreviewOffset(), 1)
}

func TestThemeCycle(t *testing.T) {
	t.Cleanup(func() { ApplyTheme(DefaultTheme) })
	env := newTestEnv(t)
	a := env.app

	press(a, "t")
	want := NextTheme(DefaultTheme)
	assert.Equal(t, want, a.Config().Theme)
	assert.Equal(t, want, CurrentTheme.Name)

	saved, err := config.Load(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, want, saved.Theme)
}

func TestRefreshPicksUpNewSessions(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	writeSession(t, env.store.Roots().Active, "-home-me-new", "new-1", baseTime, conversation(4, baseTime.Add(72*time.Hour))...)
	press(a, "j")
	press(a, "ctrl+r")

	assert.Len(t, a.Sessions(), 4)
	assert.Equal(t, "alpha-1", selectedID(a), "refresh keeps the selected session")
}

func TestResume(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "claude")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("CLAUDE_BIN", bin)

	a := newTestEnv(t).app
	cmd := press(a, "enter")
	assert.NotNil(t, cmd)

	a.Update(resumeFinishedMsg{id: "beta-1", err: errors.New("exit status 1")})
	assert.Contains(t, a.Status(), "claude exited")
}

func TestResumeWithoutBinary(t *testing.T) {
	t.Setenv("CLAUDE_BIN", filepath.Join(t.TempDir(), "missing"))

	a := newTestEnv(t).app
	cmd := press(a, "enter")
	assert.Nil(t, cmd)
	assert.Contains(t, a.Status(), "Resume failed")
}
