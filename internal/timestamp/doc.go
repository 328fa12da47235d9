// Package timestamp decides which capture instant to trust for each file.
//
// Resolution walks a strictly ordered fallback chain: the sidecar metadata
// index, then the EXIF DateTimeOriginal tag, then the filesystem's creation
// or modification time. The first tier that produces an instant wins, and
// for any readable file the chain always bottoms out.
package timestamp
