// Package registry holds the contract modules compiled into the explorer
// binary.
//
// Compiled-in modules implement Module and add their factories during
// application startup. The registry is then exported as a loader source map
// and merged with the manifest sources, so built-in and manifest-defined
// contracts go through the same loading protocol.
package registry
