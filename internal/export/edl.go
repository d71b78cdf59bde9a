// Package export renders the composition document into formats a desktop
// editor can import directly.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/storycut/storycut-agent/internal/timeline"
)

// GenerateEDL renders the composition as a CMX3600-style edit decision
// list. Clip timecodes come straight from the stored frame values under
// the composition's timebase.
func GenerateEDL(comp timeline.Composition, mediaDir string) string {
	fps := comp.Timebase
	if fps <= 0 {
		fps = 30
	}

	title := comp.Name
	if title == "" {
		title = "storycut_export"
	}

	lines := []string{fmt.Sprintf("TITLE: %s", title), "FCM: NON-DROP FRAME", ""}

	recordOffset := 0
	for i, clip := range comp.Clips {
		srcIn := framesToTimecode(clip.StartFrame, fps)
		srcOut := framesToTimecode(clip.StartFrame+clip.DurationFrame, fps)
		recIn := framesToTimecode(recordOffset, fps)
		recOut := framesToTimecode(recordOffset+clip.DurationFrame, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", clip.Filename),
			fmt.Sprintf("* MEDIA PATH:  %s", filepath.Join(mediaDir, clip.Filename)),
		)

		recordOffset += clip.DurationFrame
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func framesToTimecode(totalFrames, fps int) string {
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
