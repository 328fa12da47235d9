package placement

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestClaimIsExclusive(t *testing.T) {
	res := NewReservations()
	path := filepath.Join(t.TempDir(), "A.jpg")

	if !res.Claim(path) {
		t.Fatal("first claim should succeed")
	}
	if res.Claim(path) {
		t.Fatal("second claim of the same path must fail")
	}
	if !res.Reserved(path) {
		t.Error("path should be reserved")
	}
}

func TestClaimRefusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.jpg")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res := NewReservations()
	if res.Claim(path) {
		t.Fatal("claim must fail for a path already on disk")
	}
	if res.Reserved(path) {
		t.Error("failed claim must not leave a reservation behind")
	}
}

func TestClaimConcurrentSingleWinner(t *testing.T) {
	res := NewReservations()
	path := filepath.Join(t.TempDir(), "A.jpg")

	const attempts = 200
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if res.Claim(path) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins != 1 {
		t.Fatalf("claims won = %d, want exactly 1", wins)
	}
	if res.Len() != 1 {
		t.Fatalf("len = %d, want 1", res.Len())
	}
}
