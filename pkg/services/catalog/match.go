package catalog

import "strings"

// MatchCanonical finds the candidate equal to name under case-insensitive
// comparison. Exact matches only: partial and fuzzy matching would risk
// committing the wrong region, which is worse than asking the user.
func MatchCanonical(name string, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if strings.EqualFold(name, candidate) {
			return candidate, true
		}
	}
	return "", false
}
