package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hadar/agent-session-manager/internal/logging"
)

// EnvDataDir overrides the Claude data directory (projects and trash live under it)
const EnvDataDir = "CLAUDE_DATA_DIR"

const (
	sessionExt  = ".jsonl"
	sessionGlob = "*/*" + sessionExt
)

// Roots holds the active and trash directory trees
type Roots struct {
	Active string
	Trash  string
}

// RootsIn returns the roots for a Claude data directory
func RootsIn(dataDir string) Roots {
	return Roots{
		Active: filepath.Join(dataDir, "projects"),
		Trash:  filepath.Join(dataDir, "trash"),
	}
}

// RootsFromEnv returns roots under $CLAUDE_DATA_DIR, or under ~/.claude
func RootsFromEnv() (Roots, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return RootsIn(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Roots{}, fmt.Errorf("resolve home directory: %w", err)
	}
	return RootsIn(filepath.Join(home, ".claude")), nil
}

// Option configures a Store
type Option func(*Store)

// WithWorkers sets the number of files parsed concurrently during a scan
func WithWorkers(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgress registers a callback receiving (files done, files total) during a scan.
// Calls are serialized but may come from worker goroutines.
func WithProgress(fn func(done, total int)) Option {
	return func(s *Store) {
		s.progress = fn
	}
}

// WithLogger sets the logger used for scan and mutation events
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store owns the on-disk session files
type Store struct {
	roots    Roots
	workers  int
	progress func(done, total int)
	log      *logging.Logger
}

// NewStore creates a store over the given roots, creating them if needed
func NewStore(roots Roots, opts ...Option) (*Store, error) {
	if roots.Active == "" || roots.Trash == "" {
		return nil, &ValidationError{Field: "roots", Reason: "active and trash directories are required"}
	}

	s := &Store{
		roots:   roots,
		workers: runtime.GOMAXPROCS(0),
		log:     logging.New("store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, dir := range []string{roots.Active, roots.Trash} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, newIOError("create root", dir, err)
		}
	}
	return s, nil
}

// Roots returns the directories the store operates on
func (s *Store) Roots() Roots {
	return s.roots
}

// ActiveFile returns the path of a session file in the active tree
func (s *Store) ActiveFile(project, id string) string {
	return filepath.Join(s.roots.Active, project, id+sessionExt)
}

// TrashFile returns the path of a session file in the trash tree
func (s *Store) TrashFile(project, id string) string {
	return filepath.Join(s.roots.Trash, project, id+sessionExt)
}

// ScanActive scans the active tree
func (s *Store) ScanActive() ([]*Session, error) {
	return s.Scan(s.roots.Active)
}

// ScanTrash scans the trash tree
func (s *Store) ScanTrash() ([]*Session, error) {
	return s.Scan(s.roots.Trash)
}

// Scan parses every session file under root. Files that cannot be read or
// parsed are left out of the result; only failing to list root is an error.
// Result order is unspecified.
func (s *Store) Scan(root string) ([]*Session, error) {
	start := time.Now()

	files, err := s.sessionFiles(root)
	if err != nil {
		return nil, err
	}

	results := make([]*Session, len(files))
	var (
		g        errgroup.Group
		progMu   sync.Mutex
		finished int
	)
	g.SetLimit(s.workers)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			sess, err := loadSession(path)
			if err != nil {
				s.log.Warn("scan.skip_file", map[string]any{"path": path}, err)
			} else {
				results[i] = sess
			}
			if s.progress != nil {
				progMu.Lock()
				finished++
				s.progress(finished, len(files))
				progMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sessions := make([]*Session, 0, len(results))
	for _, sess := range results {
		if sess != nil {
			sessions = append(sessions, sess)
		}
	}

	s.log.TimedEvent("scan.done", start, map[string]any{
		"root":     root,
		"files":    len(files),
		"sessions": len(sessions),
	})
	return sessions, nil
}

// CountEntries counts session files under root without parsing them
func (s *Store) CountEntries(root string) (int, error) {
	files, err := s.sessionFiles(root)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// sessionFiles lists <root>/<project>/<id>.jsonl, skipping hidden files
func (s *Store) sessionFiles(root string) ([]string, error) {
	if _, err := os.ReadDir(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // Nothing scanned yet
		}
		return nil, newIOError("list", root, err)
	}

	matches, err := doublestar.Glob(os.DirFS(root), sessionGlob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, newIOError("list", root, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), ".") {
			continue
		}
		files = append(files, filepath.Join(root, filepath.FromSlash(m)))
	}
	sort.Strings(files)
	return files, nil
}

// loadSession reads and parses one session file
func loadSession(path string) (*Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, newIOError("stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, newIOError("read", path, errors.New("not a regular file"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newIOError("read", path, err)
	}

	p := Parse(data)
	if p.TotalEntries == 0 && len(bytes.TrimSpace(data)) > 0 {
		return nil, newIOError("parse", path, errors.New("no valid records"))
	}

	slug := filepath.Base(filepath.Dir(path))
	sess := &Session{
		ID:           strings.TrimSuffix(filepath.Base(path), sessionExt),
		ProjectSlug:  slug,
		ProjectPath:  p.Cwd,
		ProjectName:  projectName(slug, p.Cwd),
		CustomTitle:  p.CustomTitle,
		CreatedAt:    p.FirstTimestamp,
		UpdatedAt:    p.LastTimestamp,
		Size:         info.Size(),
		TotalEntries: p.TotalEntries,
		Messages:     p.Messages,
		Path:         path,
	}
	if sess.ProjectPath == "" {
		sess.ProjectPath = DecodeProjectPath(slug)
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = info.ModTime()
		sess.UpdatedAt = info.ModTime()
	}
	return sess, nil
}

// MoveToTrash relocates active/<project>/<id> to trash/<project>/<id>
func (s *Store) MoveToTrash(project, id string) error {
	if err := validateLocation(project, id); err != nil {
		return err
	}
	src := s.ActiveFile(project, id)
	dst := s.TrashFile(project, id)
	if err := s.relocate(s.roots.Active, src, dst, project, id); err != nil {
		s.log.WithProject(project).WithSession(id).Error("trash.move", nil, err)
		return err
	}
	s.log.WithProject(project).WithSession(id).Info("trash.move", map[string]any{"to": dst})
	return nil
}

// Restore moves a trashed session back to the active tree and updates its Path
func (s *Store) Restore(sess *Session) error {
	if err := validateLocation(sess.ProjectSlug, sess.ID); err != nil {
		return err
	}
	src := s.TrashFile(sess.ProjectSlug, sess.ID)
	dst := s.ActiveFile(sess.ProjectSlug, sess.ID)
	if err := s.relocate(s.roots.Trash, src, dst, sess.ProjectSlug, sess.ID); err != nil {
		s.log.WithProject(sess.ProjectSlug).WithSession(sess.ID).Error("trash.restore", nil, err)
		return err
	}
	sess.Path = dst

	// Drop the trash project directory once it is empty
	_ = os.Remove(filepath.Dir(src))

	s.log.WithProject(sess.ProjectSlug).WithSession(sess.ID).Info("trash.restore", map[string]any{"to": dst})
	return nil
}

func (s *Store) relocate(root, src, dst, project, id string) error {
	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Root: root, Project: project, ID: id}
		}
		return newIOError("stat", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return newIOError("mkdir", filepath.Dir(dst), err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return newIOError("move", dst, fs.ErrExist)
	}
	return moveFile(src, dst)
}

// PurgeAllTrash removes the whole trash tree and recreates it empty
func (s *Store) PurgeAllTrash() error {
	var errs []error
	if err := os.RemoveAll(s.roots.Trash); err != nil {
		errs = append(errs, newIOError("purge", s.roots.Trash, err))
	}
	if err := os.MkdirAll(s.roots.Trash, 0o755); err != nil {
		errs = append(errs, newIOError("create root", s.roots.Trash, err))
	}

	err := errors.Join(errs...)
	if err != nil {
		s.log.Error("trash.purge", nil, err)
	} else {
		s.log.Info("trash.purge", nil)
	}
	return err
}

// customTitleRecord is the line appended by SetCustomTitle
type customTitleRecord struct {
	Type        string `json:"type"`
	CustomTitle string `json:"customTitle"`
	SessionID   string `json:"sessionId"`
	UUID        string `json:"uuid"`
}

// SetCustomTitle appends a custom-title record to the session file and
// updates the in-memory title on success
func (s *Store) SetCustomTitle(sess *Session, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.ContainsAny(title, "\r\n") {
		return &ValidationError{Field: "title", Reason: "must be a single line"}
	}

	line, err := json.Marshal(customTitleRecord{
		Type:        KindCustomTitle,
		CustomTitle: title,
		SessionID:   sess.ID,
		UUID:        uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("encode custom title: %w", err)
	}

	f, err := os.OpenFile(sess.Path, os.O_RDWR|os.O_APPEND, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Root: filepath.Dir(filepath.Dir(sess.Path)), Project: sess.ProjectSlug, ID: sess.ID}
		}
		return newIOError("open", sess.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return newIOError("stat", sess.Path, err)
	}

	// Files written by hand may lack a trailing newline
	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			return newIOError("read", sess.Path, err)
		}
		if last[0] != '\n' {
			line = append([]byte("\n"), line...)
		}
	}
	line = append(line, '\n')

	if _, err := f.Write(line); err != nil {
		return newIOError("write", sess.Path, err)
	}
	if err := f.Sync(); err != nil {
		return newIOError("sync", sess.Path, err)
	}

	sess.CustomTitle = title
	sess.TotalEntries++
	sess.Size = info.Size() + int64(len(line))
	s.log.WithProject(sess.ProjectSlug).WithSession(sess.ID).Info("session.rename", map[string]any{"title": title})
	return nil
}

// validateLocation rejects project or id values that would escape the roots
func validateLocation(project, id string) error {
	for field, v := range map[string]string{"project": project, "id": id} {
		if v == "" || v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("invalid path component %q", v)}
		}
	}
	return nil
}
