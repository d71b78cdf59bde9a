// Package timeline owns the composition document: the frame clock, the
// per-segment track allocator, and the persisted clip timeline a downstream
// editor consumes. JSON field names are part of the editor contract and
// must not change.
package timeline

// Clip is one placed media item on the timeline. Clips are never mutated
// after they are appended.
type Clip struct {
	Filename      string            `json:"filename"`
	StartFrame    int               `json:"start_frame"`
	DurationFrame int               `json:"duration_frame"`
	SourceURL     string            `json:"source_url"`
	SegmentID     *int              `json:"linked_segment_id,omitempty"`
	Track         int               `json:"track"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Composition is the full persisted timeline document.
type Composition struct {
	Name     string `json:"name"`
	Timebase int    `json:"fps_timebase"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Clips    []Clip `json:"clips"`
}

// NextTrack returns the track number the next clip for segmentID should
// occupy: one past the highest track already assigned to that segment, or 0
// when the segment has no clips yet. Tracks are scoped per segment, so
// clips linked to different segments reuse track numbers freely. Clips
// without a linked segment never influence the numbering.
func NextTrack(clips []Clip, segmentID int) int {
	max := -1
	for _, c := range clips {
		if c.SegmentID == nil || *c.SegmentID != segmentID {
			continue
		}
		if c.Track > max {
			max = c.Track
		}
	}
	return max + 1
}
