package timestamp

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// captureTagLayouts accepts both the raw EXIF encoding of DateTimeOriginal
// and its dashed display form. The value carries no zone; it is stamped UTC
// as-is, even for photos shot elsewhere. Prior runs depend on that, so no
// zone correction is applied.
var captureTagLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
}

// captureTimeFromEXIF reads DateTimeOriginal from the primary image frame.
func captureTimeFromEXIF(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	meta, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode exif: %w", err)
	}

	tag, err := meta.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, fmt.Errorf("no DateTimeOriginal tag: %w", err)
	}

	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}, fmt.Errorf("DateTimeOriginal not a string: %w", err)
	}

	return parseCaptureTag(raw)
}

func parseCaptureTag(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range captureTagLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable DateTimeOriginal %q", raw)
}
