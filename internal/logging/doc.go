// Package logging assembles the structured slog loggers shared by every
// photosort component.
//
// It owns the console and JSON handlers, centralizes level parsing, and
// exposes attribute helpers so components emit records with a consistent
// shape. The console handler colors level labels when writing to a terminal.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
