package config

import "context"

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads a build manifest from the given path (a file or a
	// directory of manifest fragments) and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Model, error)
}
