package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Tag errors.
var (
	ErrEmptyTag = errors.New("empty tag")
	ErrTagLimit = errors.New("tag limit reached")
)

// DefaultMaxTags bounds a tag log when no limit is configured.
const DefaultMaxTags = 500

// TagEntry is one tag added during a session.
type TagEntry struct {
	ID         uuid.UUID `json:"id"`
	SearchTerm string    `json:"searchTerm"`
	Tag        string    `json:"tag"`
	AddedAt    time.Time `json:"addedAt"`
}

// Message is the confirmation shown after the tag is added.
func (e TagEntry) Message() string {
	return fmt.Sprintf("Tag '%s' added for %s", e.Tag, e.SearchTerm)
}

// TagLog is an append-only list of tags scoped to one session.
// Safe for concurrent use.
type TagLog struct {
	mu      sync.Mutex
	entries []TagEntry
	limit   int
	now     func() time.Time
}

// NewTagLog creates an empty log holding at most limit entries.
func NewTagLog(limit int) *TagLog {
	if limit <= 0 {
		limit = DefaultMaxTags
	}
	return &TagLog{limit: limit, now: time.Now}
}

// Append records a tag for a search term. The tag is trimmed; a blank tag
// returns ErrEmptyTag and a full log returns ErrTagLimit.
func (l *TagLog) Append(term, tag string) (TagEntry, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return TagEntry{}, ErrEmptyTag
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.limit {
		return TagEntry{}, fmt.Errorf("%w (%d)", ErrTagLimit, l.limit)
	}

	entry := TagEntry{
		ID:         uuid.New(),
		SearchTerm: term,
		Tag:        tag,
		AddedAt:    l.now().UTC(),
	}
	l.entries = append(l.entries, entry)
	return entry, nil
}

// Entries returns a copy of the log in insertion order.
func (l *TagLog) Entries() []TagEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]TagEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *TagLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
