// Package config loads, normalizes, and validates photosort's TOML
// configuration. Defaults are always usable; a config file only overrides
// them. Path values support ~ expansion and are resolved to absolute paths.
package config
