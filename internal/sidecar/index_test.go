package sidecar

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeSidecar(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	return path
}

func TestParseFileExtractsTitleAndTimestamp(t *testing.T) {
	path := writeSidecar(t, t.TempDir(), "IMG_01.JPG.json", `{
		"title": "IMG_01.JPG",
		"description": "",
		"photoTakenTime": {"timestamp": "1657902435", "formatted": "Jul 15, 2022"},
		"geoData": {"latitude": 0.0}
	}`)

	entry, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if entry.Title != "IMG_01.JPG" {
		t.Errorf("title = %q", entry.Title)
	}
	want := time.Unix(1657902435, 0).UTC()
	if !entry.Taken.Equal(want) {
		t.Errorf("taken = %v, want %v", entry.Taken, want)
	}
	if entry.Taken.Location() != time.UTC {
		t.Errorf("taken not UTC: %v", entry.Taken.Location())
	}
}

func TestParseFileRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"title": `},
		{"missing title", `{"photoTakenTime": {"timestamp": "1657902435"}}`},
		{"missing timestamp", `{"title": "IMG_01.JPG", "photoTakenTime": {}}`},
		{"non-numeric timestamp", `{"title": "IMG_01.JPG", "photoTakenTime": {"timestamp": "not-a-number"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSidecar(t, dir, tc.name+".json", tc.content)
			if _, err := ParseFile(path); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestIndexLastWriteWins(t *testing.T) {
	ix := NewIndex()
	first := time.Unix(1000, 0).UTC()
	second := time.Unix(2000, 0).UTC()
	ix.Insert(Entry{Title: "IMG_01.JPG", Taken: first})
	ix.Insert(Entry{Title: "IMG_01.JPG", Taken: second})

	got, ok := ix.Lookup("IMG_01.JPG")
	if !ok {
		t.Fatal("lookup failed")
	}
	if !got.Equal(second) {
		t.Errorf("got %v, want last write %v", got, second)
	}
	if ix.Len() != 1 {
		t.Errorf("len = %d, want 1", ix.Len())
	}
}

func TestIndexLookupIsExact(t *testing.T) {
	ix := NewIndex()
	ix.Insert(Entry{Title: "IMG_01.JPG", Taken: time.Unix(1000, 0).UTC()})

	if _, ok := ix.Lookup("img_01.jpg"); ok {
		t.Error("lookup should be case-sensitive")
	}
	if _, ok := ix.Lookup("IMG_01"); ok {
		t.Error("lookup should not normalize extensions")
	}
}

func TestIndexConcurrentInserts(t *testing.T) {
	ix := NewIndex()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ix.Insert(Entry{Title: filepath.Join("IMG", "file") + string(rune('a'+n%26)), Taken: time.Unix(int64(n), 0)})
		}(i)
	}
	wg.Wait()
	if ix.Len() != 26 {
		t.Errorf("len = %d, want 26", ix.Len())
	}
}
