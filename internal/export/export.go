// Package export writes sessions out as markdown documents.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hadar/agent-session-manager/internal/session"
)

// frontMatter is the YAML header of an exported file
type frontMatter struct {
	ID       string    `yaml:"id"`
	Project  string    `yaml:"project"`
	Path     string    `yaml:"path,omitempty"`
	Title    string    `yaml:"title"`
	Created  time.Time `yaml:"created"`
	Updated  time.Time `yaml:"updated"`
	Messages int       `yaml:"messages"`
	Exported time.Time `yaml:"exported"`
}

// RoleLabel returns the heading used for a message author
func RoleLabel(r session.Role) string {
	if r == session.RoleAssistant {
		return "Claude"
	}
	return "You"
}

// Transcript renders the messages of a session as markdown sections
func Transcript(sess *session.Session) string {
	var b strings.Builder
	for i, msg := range sess.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n", RoleLabel(msg.Role), msg.Content)
	}
	return b.String()
}

// Markdown returns the full export document: front matter, title and transcript
func Markdown(sess *session.Session, now time.Time) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(frontMatter{
		ID:       sess.ID,
		Project:  sess.ProjectName,
		Path:     sess.ProjectPath,
		Title:    sess.DisplayName(),
		Created:  sess.CreatedAt.UTC(),
		Updated:  sess.UpdatedAt.UTC(),
		Messages: sess.MessageCount(),
		Exported: now.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}

	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# %s\n\n", sess.DisplayName())
	if sess.MessageCount() == 0 {
		buf.WriteString("_No messages._\n")
	} else {
		buf.WriteString(Transcript(sess))
	}
	return buf.String(), nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns the export file name for a session
func FileName(sess *session.Session) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(sess.DisplayName(), "-"), "-.")
	if name == "" {
		name = "session"
	}
	return name + "-" + sess.ShortID() + ".md"
}

// WriteFile exports sess into dir, creating dir if needed, and returns the written path
func WriteFile(sess *session.Session, dir string, now time.Time) (string, error) {
	doc, err := Markdown(sess, now)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(sess))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
