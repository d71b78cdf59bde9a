package segments

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestStore_LoadAndGet(t *testing.T) {
	segPath := writeDoc(t, "segments.json", `[
		{"id": 0, "text": "hello world", "start": 0.0, "end": 2.5},
		{"id": 1, "text": "second sentence", "start": 2.5, "end": 5.0}
	]`)
	termsPath := writeDoc(t, "search_terms.json", `[
		{"id": 0, "sentence": "hello world", "youtube_terms": ["greeting", "intro"],
		 "search_engine_terms": "hello, world", "movie_suggestion": []}
	]`)

	store := NewStore(nil)
	store.Load(segPath, termsPath)

	if store.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", store.Count())
	}

	seg, terms, err := store.Get(0)
	if err != nil {
		t.Fatalf("Get(0) error = %v", err)
	}
	if seg.Text != "hello world" {
		t.Errorf("seg.Text = %q, want hello world", seg.Text)
	}
	if seg.Duration() != 2.5 {
		t.Errorf("seg.Duration() = %v, want 2.5", seg.Duration())
	}
	if terms == nil {
		t.Fatal("terms = nil, want search terms for segment 0")
	}
	if len(terms.YouTubeTerms) != 2 || terms.YouTubeTerms[0] != "greeting" {
		t.Errorf("YouTubeTerms = %v, want [greeting intro]", terms.YouTubeTerms)
	}
	if len(terms.SearchEngineTerms) != 2 || terms.SearchEngineTerms[1] != "world" {
		t.Errorf("SearchEngineTerms = %v, want [hello world]", terms.SearchEngineTerms)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store := NewStore(nil)

	_, _, err := store.Get(42)
	if err != ErrNotFound {
		t.Errorf("Get(42) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Get_TermsMayBeNil(t *testing.T) {
	segPath := writeDoc(t, "segments.json", `[{"id": 7, "text": "no terms", "start": 1.0, "end": 2.0}]`)

	store := NewStore(nil)
	store.Load(segPath, filepath.Join(t.TempDir(), "missing.json"))

	seg, terms, err := store.Get(7)
	if err != nil {
		t.Fatalf("Get(7) error = %v", err)
	}
	if seg == nil {
		t.Fatal("seg = nil")
	}
	if terms != nil {
		t.Errorf("terms = %+v, want nil", terms)
	}
}

func TestStore_Load_MissingFileIsSoft(t *testing.T) {
	store := NewStore(nil)
	store.Load("/nonexistent/segments.json", "/nonexistent/terms.json")

	if store.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after failed load", store.Count())
	}
}

func TestStore_Load_MalformedFileIsSoft(t *testing.T) {
	segPath := writeDoc(t, "segments.json", `{"not": "a list"`)

	store := NewStore(nil)
	store.Load(segPath, "/nonexistent/terms.json")

	if store.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after malformed load", store.Count())
	}
}

func TestStore_Load_PositionalIDs(t *testing.T) {
	segPath := writeDoc(t, "segments.json", `[
		{"text": "first", "start": 0, "end": 1},
		{"text": "second", "start": 1, "end": 2}
	]`)

	store := NewStore(nil)
	store.Load(segPath, "/nonexistent/terms.json")

	seg, _, err := store.Get(1)
	if err != nil {
		t.Fatalf("Get(1) error = %v", err)
	}
	if seg.Text != "second" {
		t.Errorf("seg.Text = %q, want second", seg.Text)
	}
}

func TestFlexStrings_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "array", input: `["a", "b"]`, want: []string{"a", "b"}},
		{name: "comma string", input: `"a, b ,c"`, want: []string{"a", "b", "c"}},
		{name: "empty string", input: `""`, want: []string{}},
		{name: "empty array", input: `[]`, want: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexStrings
			if err := f.UnmarshalJSON([]byte(tc.input)); err != nil {
				t.Fatalf("UnmarshalJSON(%s) error = %v", tc.input, err)
			}
			if len(f) != len(tc.want) {
				t.Fatalf("got %v, want %v", f, tc.want)
			}
			for i := range f {
				if f[i] != tc.want[i] {
					t.Errorf("got %v, want %v", f, tc.want)
					break
				}
			}
		})
	}
}

func TestStore_IDs_Sorted(t *testing.T) {
	segPath := writeDoc(t, "segments.json", `[
		{"id": 5, "text": "e", "start": 0, "end": 1},
		{"id": 2, "text": "b", "start": 1, "end": 2},
		{"id": 9, "text": "i", "start": 2, "end": 3}
	]`)

	store := NewStore(nil)
	store.Load(segPath, "/nonexistent/terms.json")

	ids := store.IDs()
	want := []int{2, 5, 9}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}
}
