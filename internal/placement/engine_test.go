package placement

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"photosort/internal/logging"
	"photosort/internal/timestamp"
)

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("payload of "+name), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func julyInstant() timestamp.Resolved {
	return timestamp.Resolved{
		Time:   time.Date(2022, time.July, 15, 17, 7, 15, 0, time.UTC),
		Source: timestamp.SourceSidecar,
	}
}

func TestPlaceDeterministicDestination(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := writeSource(t, srcDir, "IMG_01.JPG")

	engine := NewEngine(dstDir, NewReservations(), 100, logging.NewNop())
	result, err := engine.Place(src, julyInstant())
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	want := filepath.Join(dstDir, "2022", "July", "jpg", "IMG_01.JPG")
	if result.Path != want {
		t.Errorf("dest = %s, want %s", result.Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("destination missing: %v", err)
	}
}

func TestPlaceStampsResolvedTime(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := writeSource(t, srcDir, "IMG_01.JPG")

	resolved := julyInstant()
	engine := NewEngine(dstDir, NewReservations(), 100, logging.NewNop())
	result, err := engine.Place(src, resolved)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	info, err := os.Stat(result.Path)
	if err != nil {
		t.Fatalf("stat dest: %v", err)
	}
	if got := info.ModTime().UTC(); !got.Equal(resolved.Time) {
		t.Errorf("mtime = %v, want %v", got, resolved.Time)
	}
}

func TestPlaceExtensionBuckets(t *testing.T) {
	cases := []struct {
		file   string
		bucket string
	}{
		{"IMG_02.JPG", "jpg"},
		{"IMG_03.jpg", "jpg"},
		{"clip.MOV", "mov"},
		{"README", "no_ext"},
		{".nomedia", "no_ext"},
	}
	srcDir, dstDir := t.TempDir(), t.TempDir()
	engine := NewEngine(dstDir, NewReservations(), 100, logging.NewNop())

	for _, tc := range cases {
		src := writeSource(t, srcDir, tc.file)
		result, err := engine.Place(src, julyInstant())
		if err != nil {
			t.Fatalf("Place(%s): %v", tc.file, err)
		}
		if got := filepath.Base(filepath.Dir(result.Path)); got != tc.bucket {
			t.Errorf("%s bucketed under %s, want %s", tc.file, got, tc.bucket)
		}
		if got := filepath.Base(result.Path); got != tc.file {
			t.Errorf("%s renamed to %s without a collision", tc.file, got)
		}
	}
}

func TestPlaceCollisionSuffixes(t *testing.T) {
	dstDir := t.TempDir()
	engine := NewEngine(dstDir, NewReservations(), 100, logging.NewNop())

	srcA := writeSource(t, t.TempDir(), "A.jpg")
	srcB := writeSource(t, t.TempDir(), "A.jpg")

	first, err := engine.Place(srcA, julyInstant())
	if err != nil {
		t.Fatalf("Place first: %v", err)
	}
	second, err := engine.Place(srcB, julyInstant())
	if err != nil {
		t.Fatalf("Place second: %v", err)
	}

	if filepath.Base(first.Path) != "A.jpg" {
		t.Errorf("first = %s, want A.jpg", filepath.Base(first.Path))
	}
	if filepath.Base(second.Path) != "A_1.jpg" {
		t.Errorf("second = %s, want A_1.jpg", filepath.Base(second.Path))
	}
	for _, p := range []string{first.Path, second.Path} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestPlaceCollisionWithoutExtension(t *testing.T) {
	dstDir := t.TempDir()
	engine := NewEngine(dstDir, NewReservations(), 100, logging.NewNop())

	first, err := engine.Place(writeSource(t, t.TempDir(), "scan"), julyInstant())
	if err != nil {
		t.Fatalf("Place first: %v", err)
	}
	second, err := engine.Place(writeSource(t, t.TempDir(), "scan"), julyInstant())
	if err != nil {
		t.Fatalf("Place second: %v", err)
	}

	if filepath.Base(first.Path) != "scan" || filepath.Base(second.Path) != "scan_1" {
		t.Errorf("got %s and %s, want scan and scan_1", filepath.Base(first.Path), filepath.Base(second.Path))
	}
}

func TestPlaceDotfileCollision(t *testing.T) {
	dstDir := t.TempDir()
	engine := NewEngine(dstDir, NewReservations(), 100, logging.NewNop())

	first, err := engine.Place(writeSource(t, t.TempDir(), ".nomedia"), julyInstant())
	if err != nil {
		t.Fatalf("Place first: %v", err)
	}
	second, err := engine.Place(writeSource(t, t.TempDir(), ".nomedia"), julyInstant())
	if err != nil {
		t.Fatalf("Place second: %v", err)
	}

	if filepath.Base(first.Path) != ".nomedia" || filepath.Base(second.Path) != ".nomedia_1" {
		t.Errorf("got %s and %s, want .nomedia and .nomedia_1", filepath.Base(first.Path), filepath.Base(second.Path))
	}
}

func TestPlaceRespectsPreexistingFiles(t *testing.T) {
	dstDir := t.TempDir()
	targetDir := filepath.Join(dstDir, "2022", "July", "jpg")
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(targetDir, "A.jpg"), []byte("already here"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	engine := NewEngine(dstDir, NewReservations(), 100, logging.NewNop())
	result, err := engine.Place(writeSource(t, t.TempDir(), "A.jpg"), julyInstant())
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if filepath.Base(result.Path) != "A_1.jpg" {
		t.Errorf("dest = %s, want A_1.jpg next to the existing file", filepath.Base(result.Path))
	}
	seeded, err := os.ReadFile(filepath.Join(targetDir, "A.jpg"))
	if err != nil || string(seeded) != "already here" {
		t.Errorf("pre-existing file was disturbed: %q %v", seeded, err)
	}
}

func TestPlaceProbeLimitExceeded(t *testing.T) {
	dstDir := t.TempDir()
	engine := NewEngine(dstDir, NewReservations(), 3, logging.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := engine.Place(writeSource(t, t.TempDir(), "A.jpg"), julyInstant()); err != nil {
			t.Fatalf("Place %d: %v", i, err)
		}
	}
	if _, err := engine.Place(writeSource(t, t.TempDir(), "A.jpg"), julyInstant()); err == nil {
		t.Fatal("expected failure once the probe limit is exhausted")
	}
}

func TestPlaceConcurrentCollidersAllDistinct(t *testing.T) {
	const workers = 120

	dstDir := t.TempDir()
	engine := NewEngine(dstDir, NewReservations(), 10000, logging.NewNop())

	srcRoot := t.TempDir()
	sources := make([]string, workers)
	for i := range sources {
		dir := filepath.Join(srcRoot, fmt.Sprintf("src%d", i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		sources[i] = writeSource(t, dir, "A.jpg")
	}

	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			result, err := engine.Place(sources[n], julyInstant())
			results[n], errs[n] = result.Path, err
		}(i)
	}
	close(start)
	wg.Wait()

	seen := make(map[string]int, workers)
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		seen[results[i]]++
	}
	for path, count := range seen {
		if count != 1 {
			t.Errorf("path %s claimed %d times", path, count)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dstDir, "2022", "July", "jpg"))
	if err != nil {
		t.Fatalf("read dest dir: %v", err)
	}
	if len(entries) != workers {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		sort.Strings(names)
		t.Fatalf("dest dir holds %d files, want %d: %v", len(entries), workers, names)
	}
}

func TestMonthNameDefensiveBranch(t *testing.T) {
	if got := monthName(7); got != "July" {
		t.Errorf("monthName(7) = %s", got)
	}
	for _, bad := range []int{0, 13, -1} {
		if got := monthName(bad); got != "Unknown" {
			t.Errorf("monthName(%d) = %s, want Unknown", bad, got)
		}
	}
}
