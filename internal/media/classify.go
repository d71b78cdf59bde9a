package media

import (
	"net/url"
	"path"
	"strings"
)

// Kind is the acquisition route chosen for a URL.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindLink  Kind = "link"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

var videoHosts = map[string]bool{
	"youtube.com":   true,
	"youtu.be":      true,
	"m.youtube.com": true,
	"vimeo.com":     true,
}

// Classify decides how a URL should be acquired: image extensions are
// fetched directly, known video hosts go through the downloader, and
// everything else is archived as a plain link.
func Classify(rawURL string) Kind {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return KindLink
	}

	if imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return KindImage
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if videoHosts[host] {
		return KindVideo
	}

	return KindLink
}

// YouTubeID extracts the video id from a youtube.com or youtu.be URL.
// Returns empty when no id can be found.
func YouTubeID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id
		}
		// Shorts and embed URLs carry the id as the last path element
		if strings.HasPrefix(u.Path, "/shorts/") || strings.HasPrefix(u.Path, "/embed/") {
			return path.Base(u.Path)
		}
	}
	return ""
}
