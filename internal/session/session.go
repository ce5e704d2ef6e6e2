package session

import (
	"path/filepath"
	"strings"
	"time"
)

// Role identifies who authored a message
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	if r == RoleAssistant {
		return "assistant"
	}
	return "user"
}

// Message is one conversational turn
type Message struct {
	Role      Role
	Content   string
	EntryID   string
	Timestamp time.Time
}

// Session represents one Claude Code conversation backed by a JSONL file
type Session struct {
	ID          string
	ProjectSlug string // name of the containing directory
	ProjectPath string // cwd from the file, or the decoded slug
	ProjectName string
	CustomTitle string // set by a custom-title record, overrides ProjectName

	CreatedAt    time.Time
	UpdatedAt    time.Time
	Size         int64
	TotalEntries int // every valid JSON line, including ignored kinds
	Messages     []Message

	Path string // current location of the backing file
}

// DisplayName returns the custom title if set, else the derived project name
func (s *Session) DisplayName() string {
	if s.CustomTitle != "" {
		return s.CustomTitle
	}
	return s.ProjectName
}

// MessageCount returns the number of parsed messages
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// ShortID returns the first 8 characters of the session ID
func (s *Session) ShortID() string {
	if len(s.ID) > 8 {
		return s.ID[:8]
	}
	return s.ID
}

// DecodeProjectPath converts an encoded directory name back to the original path
// Note: Claude's encoding is lossy (/ _ and - all become -), so this is a fallback
func DecodeProjectPath(encoded string) string {
	if encoded == "" {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(encoded, "-"), "-")
	return "/" + strings.Join(parts, "/")
}

// projectName derives the human readable project name for a session
func projectName(slug, cwd string) string {
	if cwd != "" {
		if base := filepath.Base(cwd); base != "." && base != string(filepath.Separator) {
			return base
		}
	}
	if name := strings.Trim(slug, "-"); name != "" {
		return name
	}
	return slug
}
