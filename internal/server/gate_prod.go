//go:build production

package server

// Enabled reports whether the explorer is served by this build.
const Enabled = false
