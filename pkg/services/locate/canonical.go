package locate

import "strings"

// noiseTokens are administrative-unit suffixes that reverse-geocoding
// providers attach to place names but the upstream catalog never uses.
var noiseTokens = map[string]struct{}{
	"taluk":       {},
	"block":       {},
	"subdivision": {},
}

// StripAdminNoise removes known administrative-unit tokens from a place
// name and collapses the remaining whitespace, so "Mysuru Taluk" and the
// catalog's "Mysuru" compare equal.
func StripAdminNoise(name string) string {
	fields := strings.Fields(name)
	kept := fields[:0]
	for _, f := range fields {
		if _, noise := noiseTokens[strings.ToLower(f)]; noise {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
