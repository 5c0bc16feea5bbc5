package match

import "math"

// Threshold is the exclusive lower bound a [Ratio] must exceed for a match.
const Threshold = 70

// IsAcceptableMatch reports whether candidate is close enough to source to be treated as the same song.
func IsAcceptableMatch(source, candidate string) bool {
	return Ratio(source, candidate) > Threshold
}

// Ratio scores the similarity of two track names from 0 to 100 after [Normalize].
//
// The score is 100 * (la + lb - d) / (la + lb), where la and lb are rune counts
// and d is the insert/delete edit distance. An empty name on either side scores 0.
func Ratio(a, b string) int {
	ra, rb := []rune(Normalize(a)), []rune(Normalize(b))
	total := len(ra) + len(rb)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	dist := indelDistance(ra, rb)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// indelDistance is Levenshtein distance where a substitution costs a delete plus an insert.
func indelDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+2)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
