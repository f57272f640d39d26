package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the explorer configuration file at path. A missing file
	// yields an empty Model, not an error.
	Load(ctx context.Context, path string) (*Model, error)

	// LoadManifest reads a single contract manifest file.
	LoadManifest(ctx context.Context, path string) (*Manifest, error)
}
