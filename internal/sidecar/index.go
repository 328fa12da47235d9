package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Entry is one parsed sidecar record: the original filename the export used
// and the capture instant it recorded.
type Entry struct {
	Title string
	Taken time.Time
}

// document mirrors the subset of the export's sidecar JSON we care about.
type document struct {
	Title          string `json:"title"`
	PhotoTakenTime struct {
		Timestamp string `json:"timestamp"`
	} `json:"photoTakenTime"`
}

var errMissingFields = errors.New("sidecar missing title or photoTakenTime.timestamp")

// ParseFile reads one sidecar metadata file and extracts its entry. Parsing
// happens entirely outside any lock so concurrent callers only serialize on
// Index.Insert.
func ParseFile(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("read sidecar: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Entry{}, fmt.Errorf("parse sidecar: %w", err)
	}
	if doc.Title == "" || doc.PhotoTakenTime.Timestamp == "" {
		return Entry{}, errMissingFields
	}

	epoch, err := strconv.ParseInt(doc.PhotoTakenTime.Timestamp, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parse photoTakenTime.timestamp: %w", err)
	}

	return Entry{Title: doc.Title, Taken: time.Unix(epoch, 0).UTC()}, nil
}

// Index maps original filenames to capture instants. Inserts are serialized
// by an internal lock; once the build phase completes the index is only read.
type Index struct {
	mu     sync.Mutex
	byName map[string]time.Time
}

// NewIndex returns an empty index ready for concurrent inserts.
func NewIndex() *Index {
	return &Index{byName: make(map[string]time.Time)}
}

// Insert records an entry. Duplicate titles overwrite: last write wins.
func (ix *Index) Insert(entry Entry) {
	ix.mu.Lock()
	ix.byName[entry.Title] = entry.Taken
	ix.mu.Unlock()
}

// Lookup returns the capture instant recorded for the exact filename.
func (ix *Index) Lookup(name string) (time.Time, bool) {
	ix.mu.Lock()
	taken, ok := ix.byName[name]
	ix.mu.Unlock()
	return taken, ok
}

// Len reports how many filenames the index holds.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.byName)
}
