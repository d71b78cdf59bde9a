package timeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return Load(filepath.Join(t.TempDir(), "composition.json"), 30, nil)
}

func TestLoad_DefaultOnMissing(t *testing.T) {
	store := testStore(t)
	comp := store.Snapshot()

	if comp.Name != "New Video Composition" {
		t.Errorf("Name = %q, want New Video Composition", comp.Name)
	}
	if comp.Timebase != 30 {
		t.Errorf("Timebase = %d, want 30", comp.Timebase)
	}
	if comp.Width != 1920 || comp.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080", comp.Width, comp.Height)
	}
	if len(comp.Clips) != 0 {
		t.Errorf("clips = %d, want 0", len(comp.Clips))
	}
	if store.Loaded() {
		t.Error("Loaded() = true for a default composition")
	}
}

func TestLoad_DefaultOnMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composition.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}

	store := Load(path, 25, nil)
	comp := store.Snapshot()
	if comp.Timebase != 25 {
		t.Errorf("Timebase = %d, want default 25 after malformed load", comp.Timebase)
	}
}

func TestStore_Append_AssignsTracks(t *testing.T) {
	store := testStore(t)

	first, err := store.Append(Clip{Filename: "a.mp4", SegmentID: intPtr(5)})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if first.Track != 0 {
		t.Errorf("first clip track = %d, want 0", first.Track)
	}

	second, err := store.Append(Clip{Filename: "b.mp4", SegmentID: intPtr(5)})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if second.Track != 1 {
		t.Errorf("second clip track = %d, want 1", second.Track)
	}

	other, err := store.Append(Clip{Filename: "c.mp4", SegmentID: intPtr(6)})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if other.Track != 0 {
		t.Errorf("other segment clip track = %d, want 0", other.Track)
	}
}

func TestStore_Append_UnlinkedClipGetsTrackZero(t *testing.T) {
	store := testStore(t)

	if _, err := store.Append(Clip{Filename: "a.mp4", SegmentID: intPtr(1)}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	clip, err := store.Append(Clip{Filename: "loose.mp4"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if clip.Track != 0 {
		t.Errorf("unlinked clip track = %d, want 0", clip.Track)
	}
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composition.json")
	store := Load(path, 30, nil)

	want, err := store.Append(Clip{
		Filename:      "clip.mp4",
		StartFrame:    300,
		DurationFrame: 75,
		SourceURL:     "https://youtube.com/watch?v=abc",
		SegmentID:     intPtr(3),
		Extra:         map[string]string{"uploader": "Some Channel"},
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reloaded := Load(path, 30, nil)
	if !reloaded.Loaded() {
		t.Error("Loaded() = false after reading a persisted composition")
	}
	comp := reloaded.Snapshot()
	if len(comp.Clips) != 1 {
		t.Fatalf("reloaded clips = %d, want 1", len(comp.Clips))
	}

	got := comp.Clips[0]
	if got.Filename != want.Filename || got.StartFrame != want.StartFrame ||
		got.DurationFrame != want.DurationFrame || got.SourceURL != want.SourceURL ||
		got.Track != want.Track {
		t.Errorf("reloaded clip = %+v, want %+v", got, want)
	}
	if got.SegmentID == nil || *got.SegmentID != 3 {
		t.Errorf("reloaded SegmentID = %v, want 3", got.SegmentID)
	}
	if got.Extra["uploader"] != "Some Channel" {
		t.Errorf("reloaded Extra = %v, want uploader preserved", got.Extra)
	}
}

func TestStore_PersistedFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composition.json")
	store := Load(path, 30, nil)

	if _, err := store.Append(Clip{Filename: "x.mp4", SegmentID: intPtr(2)}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read composition: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse composition: %v", err)
	}

	for _, key := range []string{"name", "fps_timebase", "width", "height", "clips"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("persisted document missing %q", key)
		}
	}

	clips := doc["clips"].([]interface{})
	clip := clips[0].(map[string]interface{})
	for _, key := range []string{"filename", "start_frame", "duration_frame", "source_url", "linked_segment_id", "track"} {
		if _, ok := clip[key]; !ok {
			t.Errorf("persisted clip missing %q", key)
		}
	}
}

func TestStore_SetTimebase_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composition.json")
	store := Load(path, 30, nil)

	if err := store.SetTimebase(60); err != nil {
		t.Fatalf("SetTimebase() error = %v", err)
	}

	reloaded := Load(path, 30, nil)
	if got := reloaded.Snapshot().Timebase; got != 60 {
		t.Errorf("reloaded Timebase = %d, want 60", got)
	}
}

func TestStore_AppendOrderPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composition.json")
	store := Load(path, 30, nil)

	names := []string{"a.mp4", "b.jpg", "c.mp4"}
	for _, n := range names {
		if _, err := store.Append(Clip{Filename: n, SegmentID: intPtr(1)}); err != nil {
			t.Fatalf("Append(%s) error = %v", n, err)
		}
	}

	comp := Load(path, 30, nil).Snapshot()
	for i, n := range names {
		if comp.Clips[i].Filename != n {
			t.Errorf("clips[%d].Filename = %s, want %s", i, comp.Clips[i].Filename, n)
		}
	}
}

func TestStore_Append_PersistFailureKeepsMemoryState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "composition.json")
	store := Load(path, 30, nil)

	// Make the directory unwritable so the temp-file write fails.
	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatalf("chmod error: %v", err)
	}
	defer os.Chmod(dir, 0755)

	if os.Geteuid() == 0 {
		t.Skip("cannot provoke write failure as root")
	}

	_, err := store.Append(Clip{Filename: "x.mp4", SegmentID: intPtr(1)})
	if err == nil {
		t.Fatal("Append() should fail when storage is unwritable")
	}
	if store.ClipCount() != 1 {
		t.Errorf("ClipCount() = %d, want 1 (no rollback on persist failure)", store.ClipCount())
	}
}
