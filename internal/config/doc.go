// Package config loads, validates, and defaults griddle's TOML configuration.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/griddle/config.toml, then ./griddle.toml, then built-in defaults.
// A missing file is not an error; defaults apply.
package config
