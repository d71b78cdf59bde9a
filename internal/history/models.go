package history

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	KindVideo = "video"
	KindImage = "image"
	KindLink  = "link"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Acquisition is one recorded media-acquisition attempt.
type Acquisition struct {
	ID        string    `json:"id"`
	SegmentID int       `json:"segment_id"`
	Kind      string    `json:"kind"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
