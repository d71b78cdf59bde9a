// Package segments loads the spoken-word transcript documents and serves
// individual segments by id. The store is read-only after Load.
package segments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sort"
)

var ErrNotFound = errors.New("segment not found")

type Store struct {
	segments map[int]*Segment
	terms    map[int]*SearchTerms
	logger   *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		segments: make(map[int]*Segment),
		terms:    make(map[int]*SearchTerms),
		logger:   logger,
	}
}

type rawSegment struct {
	ID    *int    `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type rawTerms struct {
	ID *int `json:"id"`
	SearchTerms
}

// Load reads the segments and search-terms documents. Missing or malformed
// input degrades to an empty store with a logged warning; the agent must
// keep serving rather than refuse to start.
func (s *Store) Load(segmentsPath, termsPath string) {
	s.loadSegments(segmentsPath)
	s.loadTerms(termsPath)
}

func (s *Store) loadSegments(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("segments document unavailable, starting empty", "path", path, "error", err)
		}
		return
	}

	var raw []rawSegment
	if err := json.Unmarshal(data, &raw); err != nil {
		if s.logger != nil {
			s.logger.Warn("segments document malformed, starting empty", "path", path, "error", err)
		}
		return
	}

	for i, r := range raw {
		id := i
		if r.ID != nil {
			id = *r.ID
		}
		s.segments[id] = &Segment{ID: id, Text: r.Text, Start: r.Start, End: r.End}
	}

	if s.logger != nil {
		s.logger.Info("segments loaded", "count", len(s.segments))
	}
}

func (s *Store) loadTerms(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("search terms document unavailable", "path", path, "error", err)
		}
		return
	}

	var raw []rawTerms
	if err := json.Unmarshal(data, &raw); err != nil {
		if s.logger != nil {
			s.logger.Warn("search terms document malformed", "path", path, "error", err)
		}
		return
	}

	for i, r := range raw {
		id := i
		if r.ID != nil {
			id = *r.ID
		}
		terms := r.SearchTerms
		s.terms[id] = &terms
	}
}

// Get returns the segment and its search terms. The terms may be nil when
// the segment has no suggestions. Returns ErrNotFound for unknown ids.
func (s *Store) Get(id int) (*Segment, *SearchTerms, error) {
	seg, ok := s.segments[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	return seg, s.terms[id], nil
}

func (s *Store) Count() int {
	return len(s.segments)
}

// IDs returns all segment ids in ascending order.
func (s *Store) IDs() []int {
	ids := make([]int, 0, len(s.segments))
	for id := range s.segments {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
