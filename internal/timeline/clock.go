package timeline

import (
	"errors"
	"math"
	"sync"
)

var ErrInvalidFPS = errors.New("fps must be a positive number")

// Clock holds the current frames-per-second value used for every
// seconds-to-frames conversion in the agent. The fps starts unset (or
// seeded from a persisted composition timebase) and changes only through
// SetFPS. Changing fps never recomputes frames already persisted.
type Clock struct {
	mu  sync.RWMutex
	fps float64
	set bool
}

func NewClock() *Clock {
	return &Clock{}
}

// NewClockWithFPS returns a clock seeded with an initial fps, used when a
// persisted composition already carries a timebase.
func NewClockWithFPS(fps float64) *Clock {
	c := &Clock{}
	if fps > 0 {
		c.fps = fps
		c.set = true
	}
	return c
}

func (c *Clock) SetFPS(fps float64) error {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return ErrInvalidFPS
	}
	c.mu.Lock()
	c.fps = fps
	c.set = true
	c.mu.Unlock()
	return nil
}

// FPS returns the current fps and whether it has been set.
func (c *Clock) FPS() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fps, c.set
}

// ToFrames converts a seconds interval to a start frame and a frame count.
// Rounding is applied to the absolute boundaries, not the span:
//
//	start_frame    = round(start * fps)
//	duration_frame = round(end * fps) - start_frame
//
// which is not always equal to round((end-start) * fps). The downstream
// editor depends on this exact arithmetic. Ties round half away from zero
// (math.Round). When fps is unset the conversion degrades to (0, 0) and
// the caller decides how to surface that.
func (c *Clock) ToFrames(start, end float64) (startFrame, durationFrame int) {
	c.mu.RLock()
	fps, set := c.fps, c.set
	c.mu.RUnlock()

	if !set {
		return 0, 0
	}

	sf := int(math.Round(start * fps))
	ef := int(math.Round(end * fps))
	return sf, ef - sf
}
