package stats

import (
	"strings"
	"unicode"

	"github.com/fortuna/gridiron/internal/store"
)

// ParseStatus maps free-text source status onto a GameStatus.
//
// Buckets are checked in the order pre|scheduled, in|live, final|post,
// postponed|delayed, with two disambiguating checks: postponed/delayed is
// tested before final/post ("postponed" contains "post"), and "in" only
// matches as a whole token ("final" contains "in").
func ParseStatus(text string) store.GameStatus {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return store.StatusScheduled
	}
	tokens := tokenize(s)

	switch {
	case strings.Contains(s, "postponed") || strings.Contains(s, "delayed"):
		return store.StatusPostponed
	case strings.Contains(s, "pre") || strings.Contains(s, "scheduled"):
		return store.StatusScheduled
	case tokens["in"] || strings.Contains(s, "live") || strings.Contains(s, "progress") || strings.Contains(s, "halftime"):
		return store.StatusInProgress
	case strings.Contains(s, "final") || strings.Contains(s, "post"):
		return store.StatusFinal
	}
	return store.StatusScheduled
}

func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		out[f] = true
	}
	return out
}
