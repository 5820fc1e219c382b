// Package config holds gapbuf's typed settings and assembles them from
// layered sources.
//
// Precedence, lowest first:
//
//  1. Built-in defaults (Default)
//  2. A TOML file (see loader.TOMLLoader)
//  3. GAPBUF_* environment variables (see loader.EnvLoader)
//  4. Overrides passed to LoadFile, such as command-line flags
//
// A file looks like:
//
//	[buffer]
//	gap_size = 2
//
//	[logging]
//	level = "info"
//
//	[demo]
//	label_prefix = "h"
//	count = 7
//	format = "text"
package config
