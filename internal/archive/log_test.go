package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLog_AppendAndEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	log := Load(path, nil)

	if err := log.Append(3, "https://example.com/article"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := log.Append(3, "https://example.com/other"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	entries := log.Entries(3)
	if len(entries) != 2 {
		t.Fatalf("Entries(3) = %d entries, want 2", len(entries))
	}
	if entries[0].URL != "https://example.com/article" {
		t.Errorf("entries[0].URL = %s, want first appended url", entries[0].URL)
	}
	if entries[0].Timestamp == "" {
		t.Error("entries[0].Timestamp is empty")
	}
	if _, err := time.Parse(time.RFC3339, entries[0].Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", entries[0].Timestamp, err)
	}
}

func TestLog_PersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	log := Load(path, nil)

	if err := log.Append(7, "https://example.com/a"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reloaded := Load(path, nil)
	entries := reloaded.Entries(7)
	if len(entries) != 1 || entries[0].URL != "https://example.com/a" {
		t.Errorf("reloaded entries = %+v, want one entry for segment 7", entries)
	}
}

func TestLog_PersistedShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	log := Load(path, nil)

	if err := log.Append(12, "https://example.com/x"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}

	var doc map[string][]map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse archive: %v", err)
	}

	entries, ok := doc["12"]
	if !ok {
		t.Fatal("document missing segment key \"12\"")
	}
	if entries[0]["url"] != "https://example.com/x" {
		t.Errorf("persisted url = %s, want https://example.com/x", entries[0]["url"])
	}
	if entries[0]["timestamp"] == "" {
		t.Error("persisted timestamp is empty")
	}
}

func TestLog_EmptySegment(t *testing.T) {
	log := Load(filepath.Join(t.TempDir(), "archive.json"), nil)

	if entries := log.Entries(99); len(entries) != 0 {
		t.Errorf("Entries(99) = %v, want empty", entries)
	}
}

func TestLoad_MalformedIsSoft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	if err := os.WriteFile(path, []byte("[not a map]"), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}

	log := Load(path, nil)
	if log.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after malformed load", log.Count())
	}
}
