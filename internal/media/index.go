// Package media covers acquisition of operator-supplied media: URL
// classification, image fetching, the external video downloader, and the
// download index that prevents re-fetching an image already on disk.
package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrUpstream marks a failure in an external collaborator (remote host or
// downloader subprocess). Upstream failures must never touch the timeline.
var ErrUpstream = errors.New("upstream acquisition failed")

var ErrPersist = errors.New("download index persist failed")

// Index maps source URLs to the local filenames they were saved as. It is
// consulted before any image fetch so the same payload is never written
// twice; it does not dedup timeline entries.
type Index struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
	logger  *slog.Logger
}

// LoadIndex opens the download index at path, starting empty when the
// document is missing or malformed.
func LoadIndex(path string, logger *slog.Logger) *Index {
	idx := &Index{path: path, entries: make(map[string]string), logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.Warn("download index unreadable, starting empty", "path", path, "error", err)
		}
		return idx
	}

	if err := json.Unmarshal(data, &idx.entries); err != nil {
		if logger != nil {
			logger.Warn("download index malformed, starting empty", "path", path, "error", err)
		}
		idx.entries = make(map[string]string)
	}
	return idx
}

// Has returns the previously recorded filename for url, if any.
func (i *Index) Has(url string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	filename, ok := i.entries[url]
	return filename, ok
}

// Record stores the url to filename mapping and persists the whole document.
func (i *Index) Record(url, filename string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.entries[url] = filename
	return i.persist()
}

func (i *Index) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.entries)
}

func (i *Index) persist() error {
	data, err := json.MarshalIndent(i.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	tmp := i.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(i.path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmp, i.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
