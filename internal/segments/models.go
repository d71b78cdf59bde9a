package segments

import (
	"encoding/json"
	"strings"
)

// Segment is one unit of transcribed speech with a time window.
// Segments are immutable once loaded.
type Segment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment's time window length in seconds.
func (s *Segment) Duration() float64 {
	return s.End - s.Start
}

// SearchTerms holds the per-segment media search suggestions.
type SearchTerms struct {
	Sentence          string      `json:"sentence"`
	YouTubeTerms      FlexStrings `json:"youtube_terms"`
	SearchEngineTerms FlexStrings `json:"search_engine_terms"`
	MovieSuggestions  FlexStrings `json:"movie_suggestion"`
}

// FlexStrings accepts either a JSON array of strings or a single
// comma-separated string and normalizes both to an ordered list.
// The input documents are produced by tools that are inconsistent
// about which shape they emit.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}

	parts := strings.Split(single, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*f = out
	return nil
}
