package session

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// Record kinds recognized in Claude's JSONL files
const (
	KindUser        = "user"
	KindAssistant   = "assistant"
	KindCustomTitle = "custom-title"
)

// MessageContent represents the message structure in JSONL
type MessageContent struct {
	Role       string          `json:"role"`
	RawContent json.RawMessage `json:"content,omitempty"`
}

// ContentPart represents a part of the message content
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// GetContent flattens string or segment-array content to plain text.
// ok is false when content is missing or neither a string nor an array.
func (m *MessageContent) GetContent() (text string, ok bool) {
	raw := bytes.TrimSpace(m.RawContent)
	if len(raw) == 0 {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '[':
		var parts []ContentPart
		if err := json.Unmarshal(raw, &parts); err != nil {
			return "", false
		}
		var texts []string
		for _, part := range parts {
			if part.Type == "text" {
				texts = append(texts, part.Text)
			}
		}
		return strings.Join(texts, "\n"), true
	}
	return "", false
}

// Parsed is the result of parsing one session file
type Parsed struct {
	Messages       []Message
	CustomTitle    string
	Cwd            string
	FirstTimestamp time.Time
	LastTimestamp  time.Time
	TotalEntries   int
}

// Parse converts the raw content of a session file into messages.
// Every line that is valid JSON counts as a record; only the user, assistant
// and custom-title kinds are decoded further, everything else is skipped.
func Parse(data []byte) Parsed {
	var p Parsed

	recs := records(data)
	p.TotalEntries = len(recs)

	for _, line := range recs {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(line, &fields); err != nil {
			continue // valid JSON but not an object
		}
		kind := stringField(fields, "type")

		ts, hasTS := parseTimestamp(stringField(fields, "timestamp"))
		if hasTS {
			if p.FirstTimestamp.IsZero() || ts.Before(p.FirstTimestamp) {
				p.FirstTimestamp = ts
			}
			if ts.After(p.LastTimestamp) {
				p.LastTimestamp = ts
			}
		}
		if p.Cwd == "" {
			p.Cwd = stringField(fields, "cwd")
		}

		switch kind {
		case KindCustomTitle:
			if title := strings.TrimSpace(stringField(fields, "customTitle")); title != "" {
				p.CustomTitle = title
			}
			continue
		case KindUser, KindAssistant:
		default:
			continue
		}

		raw, ok := fields["message"]
		if !ok {
			continue
		}
		var content MessageContent
		if err := json.Unmarshal(raw, &content); err != nil {
			continue
		}
		text, ok := content.GetContent()
		if !ok {
			continue
		}
		text = CleanContent(text)
		if text == "" || isNoiseMessage(text) {
			continue
		}

		msg := Message{
			Role:    RoleUser,
			Content: text,
			EntryID: stringField(fields, "uuid"),
		}
		if kind == KindAssistant {
			msg.Role = RoleAssistant
		}
		if hasTS {
			msg.Timestamp = ts
		}
		p.Messages = append(p.Messages, msg)
	}

	return p
}

// records returns the trimmed lines of data that are valid JSON
func records(data []byte) [][]byte {
	var out [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 && json.Valid(line) {
			out = append(out, line)
		}
	}
	return out
}

// stringField returns fields[key] when it is a JSON string; any other type reads as absent
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var (
	caveatRe  = regexp.MustCompile(`(?s)<local-command-caveat>.*?</local-command-caveat>\n?`)
	taskRe    = regexp.MustCompile(`(?s)<task-notification>(.*?)</task-notification>`)
	commandRe = regexp.MustCompile(`(?s)<command-name>(.*?)</command-name>.*?<command-args>(.*?)</command-args>`)
	stdoutRe  = regexp.MustCompile(`(?s)<local-command-stdout>(.*?)</local-command-stdout>`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
	bareSGRRe = regexp.MustCompile(`\[[0-9;]*m`)
	blankRe   = regexp.MustCompile(`\n{3,}`)
)

// CleanContent turns Claude Code's wrapper markup into readable text
func CleanContent(text string) string {
	text = caveatRe.ReplaceAllString(text, "")

	text = taskRe.ReplaceAllStringFunc(text, func(match string) string {
		inner := taskRe.FindStringSubmatch(match)[1]
		summary := xmlInner(inner, "summary")
		status := xmlInner(inner, "status")
		return "> **[Task " + status + "]** " + summary
	})

	text = commandRe.ReplaceAllStringFunc(text, func(match string) string {
		groups := commandRe.FindStringSubmatch(match)
		name := strings.TrimSpace(groups[1])
		args := strings.TrimSpace(groups[2])
		if args == "" {
			return "`" + name + "`"
		}
		return "`" + name + " " + args + "`"
	})

	text = stdoutRe.ReplaceAllStringFunc(text, func(match string) string {
		inner := strings.TrimSpace(stripANSI(stdoutRe.FindStringSubmatch(match)[1]))
		if inner == "" {
			return ""
		}
		return "\n```\n" + inner + "\n```\n"
	})

	text = tagRe.ReplaceAllString(text, "")
	text = stripANSI(text)
	text = blankRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

func stripANSI(s string) string {
	return bareSGRRe.ReplaceAllString(ansi.Strip(s), "")
}

// xmlInner returns the trimmed body of <tag>...</tag>, or "?" if absent
func xmlInner(text, tag string) string {
	open := "<" + tag + ">"
	start := strings.Index(text, open)
	end := strings.Index(text, "</"+tag+">")
	if start < 0 || end < 0 || end < start+len(open) {
		return "?"
	}
	return strings.TrimSpace(text[start+len(open) : end])
}

// isNoiseMessage detects slash commands and bare stdout blocks
func isNoiseMessage(text string) bool {
	t := strings.TrimSpace(text)
	if len(t) > 2 && strings.HasPrefix(t, "`") && strings.HasSuffix(t, "`") {
		inner := t[1 : len(t)-1]
		if strings.HasPrefix(inner, "/") && !strings.Contains(inner, "\n") {
			return true
		}
	}
	if len(t) > 6 && strings.HasPrefix(t, "```") && strings.HasSuffix(t, "```") {
		return true
	}
	return false
}
