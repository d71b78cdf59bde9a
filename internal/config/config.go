// Package config provides configuration management for the StoryCut Agent.
// Configuration is loaded from environment variables with sensible defaults.
// A .env file in the working directory is honoured when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort     = 8848
	DefaultLogLevel = "info"
	DefaultDataDir  = ".storycut"

	// Environment variable names
	EnvPort     = "STORYCUT_PORT"
	EnvLogLevel = "STORYCUT_LOG_LEVEL"
	EnvDataDir  = "STORYCUT_DATA_DIR"
	EnvHeadless = "STORYCUT_HEADLESS"

	// Input document environment variable names
	EnvSegmentsPath = "STORYCUT_SEGMENTS_PATH"
	EnvTermsPath    = "STORYCUT_SEARCH_TERMS_PATH"

	// Downloader environment variable names
	EnvDownloaderPython = "STORYCUT_DOWNLOADER_PYTHON"
	EnvDownloaderModule = "STORYCUT_DOWNLOADER_MODULE"

	// Database filename
	DBFilename = "storycut.db"

	// Composition defaults
	DefaultCompositionName = "New Video Composition"
	DefaultTimebase        = 30
	DefaultWidth           = 1920
	DefaultHeight          = 1080

	// Downloader defaults
	DefaultDownloaderModule         = "yt_dlp"
	DefaultDownloaderTimeoutSeconds = 300
	DefaultFetchTimeoutSeconds      = 30
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	MediaDir() string
	CompositionPath() string
	ArchivePath() string
	DownloadIndexPath() string
	FrameExportPath() string
	SegmentsPath() string
	TermsPath() string
	DownloaderPython() string
	DownloaderModule() string
	DownloaderTimeout() time.Duration
	FetchTimeout() time.Duration
	Headless() bool
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	headless bool

	segmentsPath string
	termsPath    string

	downloaderPython string
	downloaderModule string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	// Best effort: a missing .env file is not an error
	_ = godotenv.Load()

	cfg := &EnvConfig{
		port:     DefaultPort,
		logLevel: DefaultLogLevel,
		dataDir:  defaultDataDir(),
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	cfg.segmentsPath = os.Getenv(EnvSegmentsPath)
	cfg.termsPath = os.Getenv(EnvTermsPath)
	cfg.downloaderPython = os.Getenv(EnvDownloaderPython)

	if dm := os.Getenv(EnvDownloaderModule); dm != "" {
		cfg.downloaderModule = dm
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// MediaDir returns the directory where acquired media files are stored
func (c *EnvConfig) MediaDir() string {
	return filepath.Join(c.dataDir, "media")
}

// CompositionPath returns the path of the persisted composition document
func (c *EnvConfig) CompositionPath() string {
	return filepath.Join(c.dataDir, "composition.json")
}

// ArchivePath returns the path of the persisted archive log document
func (c *EnvConfig) ArchivePath() string {
	return filepath.Join(c.dataDir, "archive.json")
}

// DownloadIndexPath returns the path of the persisted download index document
func (c *EnvConfig) DownloadIndexPath() string {
	return filepath.Join(c.dataDir, "downloads.json")
}

// FrameExportPath returns the path the frame-based export document is written to
func (c *EnvConfig) FrameExportPath() string {
	return filepath.Join(c.dataDir, "segments_frames.json")
}

// SegmentsPath returns the path of the spoken-word segments input document
func (c *EnvConfig) SegmentsPath() string {
	if c.segmentsPath != "" {
		return c.segmentsPath
	}
	return filepath.Join(c.dataDir, "segments.json")
}

// TermsPath returns the path of the per-segment search terms input document
func (c *EnvConfig) TermsPath() string {
	if c.termsPath != "" {
		return c.termsPath
	}
	return filepath.Join(c.dataDir, "search_terms.json")
}

func (c *EnvConfig) DownloaderPython() string {
	return c.downloaderPython
}

func (c *EnvConfig) DownloaderModule() string {
	if c.downloaderModule != "" {
		return c.downloaderModule
	}
	return DefaultDownloaderModule
}

func (c *EnvConfig) DownloaderTimeout() time.Duration {
	return time.Duration(DefaultDownloaderTimeoutSeconds) * time.Second
}

func (c *EnvConfig) FetchTimeout() time.Duration {
	return time.Duration(DefaultFetchTimeoutSeconds) * time.Second
}

// Headless reports whether the system tray should be disabled
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
