package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeTitle reduces a composition or project name to the ASCII subset
// that survives both an EDL TITLE line and a filename on the platforms
// the downstream editor runs on. Runs of anything else collapse to a
// single underscore.
func SanitizeTitle(s string, maxLen int) string {
	var b strings.Builder
	underscore := false
	for _, r := range s {
		if titleRune(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore {
			b.WriteByte('_')
			underscore = true
		}
	}

	title := strings.Trim(b.String(), " ._")
	if maxLen > 0 && len(title) > maxLen {
		title = strings.Trim(title[:maxLen], " ._")
	}
	return title
}

func titleRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '.', r == '-':
		return true
	}
	return false
}

// ValidateOutputDir checks that dir is a usable export destination. The
// agent only writes exports into a directory the operator named
// explicitly, so traversal and not-yet-created paths are errors rather
// than something to repair silently.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("output_dir is required")
	}

	if dir != filepath.Clean(dir) || containsTraversal(dir) {
		return fmt.Errorf("output_dir must be a clean path without traversal")
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("output_dir does not exist")
	}
	if err != nil {
		return fmt.Errorf("invalid output_dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output_dir is not a directory")
	}
	return nil
}

func containsTraversal(dir string) bool {
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
