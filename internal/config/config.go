// Package config holds the small set of knobs patlab threads explicitly
// through its commands, rather than reaching for a global. Grounded on the
// teacher's defaultEnv/stringVar flag-default helpers in main.go, adapted to
// seed cobra flag defaults from the environment instead of the stdlib flag
// package.
package config

import (
	"os"
	"strconv"
)

// Config is the set of session-wide settings every patlab subcommand reads
// explicitly, never through a package-level global.
type Config struct {
	// Strip is the number of leading path components removed from diff
	// filenames on parse ("-p" level in patch(1) terms).
	Strip int
	// Context is the number of context lines the diff generator keeps
	// around a change. Shrinkwrap does not read it; it always keeps 3.
	Context int
	// Editor is the command used by edit/edit2/sift; empty means fall back
	// to $EDITOR.
	Editor string
}

// Default returns a Config seeded from environment variables, falling back
// to patlab's built-in defaults. There is deliberately no on-disk session
// state here: every patlab invocation is handed its patches as explicit
// arguments and holds its working stack in memory only for its own
// lifetime.
func Default() Config {
	return Config{
		Strip:   atoiEnv("PATLAB_STRIP", 1),
		Context: atoiEnv("PATLAB_CONTEXT", 3),
		Editor:  defaultEnv("PATLAB_EDITOR", os.Getenv("EDITOR")),
	}
}

func defaultEnv(envVar, def string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return def
}

func atoiEnv(envVar string, def int) int {
	v := os.Getenv(envVar)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
