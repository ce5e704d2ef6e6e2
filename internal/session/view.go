package session

import (
	"cmp"
	"slices"
	"strings"
)

// SortKey selects the field sessions are ordered by
type SortKey int

const (
	SortByUpdated SortKey = iota
	SortByName
	SortByMessages
)

var sortKeyNames = map[SortKey]string{
	SortByUpdated:  "updated",
	SortByName:     "name",
	SortByMessages: "messages",
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return "unknown"
}

// Next cycles updated → name → messages → updated
func (k SortKey) Next() SortKey {
	return (k + 1) % SortKey(len(sortKeyNames))
}

// Direction is the sort order
type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// Flip reverses the direction
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Filter returns sessions whose display name or ID contains query,
// ignoring case. An empty query returns the input as is.
func Filter(sessions []*Session, query string) []*Session {
	if query == "" {
		return sessions
	}
	q := strings.ToLower(query)

	var filtered []*Session
	for _, s := range sessions {
		if strings.Contains(strings.ToLower(s.DisplayName()), q) ||
			strings.Contains(strings.ToLower(s.ID), q) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Sort returns a stably sorted copy of sessions. Sessions with equal keys
// keep their input order in both directions.
func Sort(sessions []*Session, key SortKey, dir Direction) []*Session {
	sorted := slices.Clone(sessions)

	compare := func(a, b *Session) int {
		switch key {
		case SortByName:
			return cmp.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName()))
		case SortByMessages:
			return cmp.Compare(a.MessageCount(), b.MessageCount())
		default:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}

	slices.SortStableFunc(sorted, func(a, b *Session) int {
		if dir == Descending {
			return -compare(a, b)
		}
		return compare(a, b)
	})
	return sorted
}
