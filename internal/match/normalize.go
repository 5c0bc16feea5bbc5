package match

import (
	"strings"
	"unicode"
)

// noiseTokens mark a trailing " - " suffix as release detail rather than part of the title.
var noiseTokens = map[string]struct{}{
	"album":      {},
	"clean":      {},
	"deluxe":     {},
	"edit":       {},
	"edition":    {},
	"explicit":   {},
	"live":       {},
	"mix":        {},
	"mono":       {},
	"original":   {},
	"radio":      {},
	"remaster":   {},
	"remastered": {},
	"single":     {},
	"stereo":     {},
	"version":    {},
}

var (
	featuringMarkers = []string{" feat. ", " feat ", " ft. ", " ft ", " featuring "}
	suffixSeparators = []string{" - ", " \u2013 ", " \u2014 "}
)

// Normalize lower-cases name and drops release detail before comparison.
//
// Bracketed segments go, as does everything from a featuring marker on and any
// trailing " - " suffix made only of noise words and numbers ("- Radio Edit",
// "- Remastered 2011"). Noise words elsewhere in the title are kept. Separators
// collapse to single spaces. When nothing survives (e.g. "(Live)"), the
// lower-cased, trimmed input is returned instead.
func Normalize(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return ""
	}

	s := stripSuffixes(cutFeaturing(stripBrackets(lower)))
	tokens := strings.Fields(collapseSeparators(s))
	if len(tokens) == 0 {
		return lower
	}
	return strings.Join(tokens, " ")
}

// cutFeaturing drops s from its earliest featuring marker.
func cutFeaturing(s string) string {
	cut := len(s)
	for _, marker := range featuringMarkers {
		if i := strings.Index(s, marker); i >= 0 && i < cut {
			cut = i
		}
	}
	return s[:cut]
}

// stripSuffixes removes trailing dash suffixes for as long as they are pure noise.
func stripSuffixes(s string) string {
	for {
		i, sep := lastSeparator(s)
		if i < 0 || !isNoise(s[i+len(sep):]) {
			return s
		}
		s = s[:i]
	}
}

func lastSeparator(s string) (int, string) {
	at, found := -1, ""
	for _, sep := range suffixSeparators {
		if i := strings.LastIndex(s, sep); i > at {
			at, found = i, sep
		}
	}
	return at, found
}

func isNoise(s string) bool {
	for _, tok := range strings.Fields(collapseSeparators(s)) {
		if _, noise := noiseTokens[tok]; noise {
			continue
		}
		if strings.IndexFunc(tok, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
			return false
		}
	}
	return true
}

func stripBrackets(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// collapseSeparators replaces every run of non-alphanumeric runes with one space.
func collapseSeparators(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteRune(' ')
			space = true
		}
	}
	return b.String()
}
