// Package archive keeps the append-only per-segment list of links the
// operator chose to archive instead of download. The whole document is
// re-persisted after every append, same policy as the composition store.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var ErrPersist = errors.New("archive log persist failed")

// Entry is one archived link.
type Entry struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

// Log is the persisted archive document, keyed by segment id.
type Log struct {
	mu      sync.Mutex
	path    string
	entries map[string][]Entry
	logger  *slog.Logger
	now     func() time.Time
}

// Load opens the archive log at path. A missing or malformed document
// degrades to an empty log with a logged warning.
func Load(path string, logger *slog.Logger) *Log {
	l := &Log{
		path:    path,
		entries: make(map[string][]Entry),
		logger:  logger,
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.Warn("archive log unreadable, starting empty", "path", path, "error", err)
		}
		return l
	}

	if err := json.Unmarshal(data, &l.entries); err != nil {
		if logger != nil {
			logger.Warn("archive log malformed, starting empty", "path", path, "error", err)
		}
		l.entries = make(map[string][]Entry)
	}
	return l
}

// Append records url under segmentID with the current timestamp and
// persists the whole document. A failed persist leaves the in-memory entry
// in place and returns the error.
func (l *Log) Append(segmentID int, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := strconv.Itoa(segmentID)
	l.entries[key] = append(l.entries[key], Entry{
		URL:       url,
		Timestamp: l.now().UTC().Format(time.RFC3339),
	})

	return l.persist()
}

// Entries returns the archived links for a segment in append order.
func (l *Log) Entries(segmentID int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	src := l.entries[strconv.Itoa(segmentID)]
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// Count returns the total number of archived links across all segments.
func (l *Log) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, entries := range l.entries {
		total += len(entries)
	}
	return total
}

func (l *Log) persist() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	tmp := l.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
