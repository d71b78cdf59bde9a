package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrPersist marks a failed composition write. The in-memory composition
// keeps the attempted mutation; only the disk state is suspect.
var ErrPersist = errors.New("composition persist failed")

// Store owns the persisted composition document. All mutation goes through
// SetName, SetTimebase, and Append; each persists the whole document before
// returning. Mutations are serialized by a single lock.
type Store struct {
	mu     sync.Mutex
	path   string
	comp   Composition
	loaded bool
	logger *slog.Logger
}

// DefaultComposition returns the composition used for a fresh environment.
func DefaultComposition(timebase int) Composition {
	return Composition{
		Name:     "New Video Composition",
		Timebase: timebase,
		Width:    1920,
		Height:   1080,
		Clips:    []Clip{},
	}
}

// Load opens the composition at path, falling back to a default document
// when the file is absent or unreadable so a fresh environment is
// immediately usable. Loading never fails.
func Load(path string, defaultTimebase int, logger *slog.Logger) *Store {
	s := &Store{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.Warn("composition unreadable, starting fresh", "path", path, "error", err)
		}
		s.comp = DefaultComposition(defaultTimebase)
		return s
	}

	var comp Composition
	if err := json.Unmarshal(data, &comp); err != nil {
		if logger != nil {
			logger.Warn("composition malformed, starting fresh", "path", path, "error", err)
		}
		s.comp = DefaultComposition(defaultTimebase)
		return s
	}

	if comp.Clips == nil {
		comp.Clips = []Clip{}
	}
	s.comp = comp
	s.loaded = true

	if logger != nil {
		logger.Info("composition loaded", "name", comp.Name, "clips", len(comp.Clips), "timebase", comp.Timebase)
	}
	return s
}

// Append assigns the clip's track, appends it, and persists the whole
// document. The returned clip carries the assigned track. On a persistence
// failure the clip remains appended in memory and the error is returned;
// callers must treat disk state as behind.
func (s *Store) Append(clip Clip) (Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if clip.SegmentID != nil {
		clip.Track = NextTrack(s.comp.Clips, *clip.SegmentID)
	} else {
		clip.Track = 0
	}

	s.comp.Clips = append(s.comp.Clips, clip)

	if err := s.persist(); err != nil {
		return clip, err
	}
	return clip, nil
}

// SetTimebase updates the composition's fps timebase and persists.
func (s *Store) SetTimebase(timebase int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comp.Timebase = timebase
	return s.persist()
}

// SetName updates the composition's name and persists.
func (s *Store) SetName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comp.Name = name
	return s.persist()
}

// Snapshot returns a copy of the current composition safe for reads.
func (s *Store) Snapshot() Composition {
	s.mu.Lock()
	defer s.mu.Unlock()

	comp := s.comp
	comp.Clips = make([]Clip, len(s.comp.Clips))
	copy(comp.Clips, s.comp.Clips)
	return comp
}

// Loaded reports whether the composition came from a persisted document
// rather than the built-in default. Callers use this to decide whether the
// stored timebase reflects an operator choice.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// ClipCount returns the number of clips on the timeline.
func (s *Store) ClipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comp.Clips)
}

// persist writes the whole document via a temp file and atomic rename so a
// crash mid-write cannot truncate the composition. Caller holds s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.comp, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
