//go:build !linux

package timestamp

import "time"

// birthTime reports no creation time on platforms without a statx-style
// interface, pushing resolution to the modification-time fallback.
func birthTime(string) (time.Time, bool) {
	return time.Time{}, false
}
