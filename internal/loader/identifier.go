package loader

import "strings"

// ReservedIdentifier names the shared helper module that lives next to the
// contract modules but is not one itself.
const ReservedIdentifier = "util"

// ModuleSuffixes are the source extensions trimmed from a key's final
// segment: HCL manifests and TypeScript contract bindings.
var ModuleSuffixes = []string{".hcl", ".ts"}

// Identifier derives the contract identifier from a source key: the final
// "/"-separated segment with one module suffix removed.
func Identifier(key string) string {
	segment := key[strings.LastIndex(key, "/")+1:]
	for _, suffix := range ModuleSuffixes {
		if trimmed, ok := strings.CutSuffix(segment, suffix); ok {
			return trimmed
		}
	}
	return segment
}

// Skipped reports whether entries with this identifier are ignored entirely.
func Skipped(id string) bool {
	return id == "" || id == ReservedIdentifier
}
