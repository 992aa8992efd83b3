// Package match decides whether two titles refer to the same story or
// episode. Two variants exist: TitlesMatch for show-episode matching
// (podcast RSS vs YouTube uploads) and SimilarTitles for cross-source
// news dedup. Thresholds are tuned so false positives stay rare; a
// missed duplicate only republishes, a wrong merge loses a story.
package match

import (
	"regexp"
	"strings"
)

const (
	overlapThreshold = 0.6
	jaccardThreshold = 0.4
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]+`)
	hashNumberRe = regexp.MustCompile(`#(\d+)`)
	anyNumberRe  = regexp.MustCompile(`(\d+)`)
)

// Normalize lowercases a title, strips everything outside [a-z0-9\s],
// and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// TitlesMatch reports whether two titles refer to the same episode.
// Checks run in order and short-circuit: exact match after
// normalization, containment, episode-number equality, then token
// overlap against the smaller token set.
func TitlesMatch(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	if numA, okA := episodeNumber(a); okA {
		if numB, okB := episodeNumber(b); okB && numA == numB {
			return true
		}
	}

	ta, tb := tokens(na), tokens(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	shared := intersectionSize(ta, tb)
	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	return float64(shared)/float64(smaller) >= overlapThreshold
}

// SimilarTitles reports whether two titles likely cover the same news
// story. It compares stopword-filtered token sets: Jaccard similarity
// above 0.4, or at least half of the important (long) tokens from the
// smaller set appearing in the other. Symmetric in its arguments.
func SimilarTitles(a, b string) bool {
	ta := contentTokens(Normalize(a))
	tb := contentTokens(Normalize(b))
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}

	shared := intersectionSize(ta, tb)
	union := len(ta) + len(tb) - shared
	if union > 0 && float64(shared)/float64(union) > jaccardThreshold {
		return true
	}

	switch {
	case len(ta) < len(tb):
		return importantOverlap(ta, tb)
	case len(tb) < len(ta):
		return importantOverlap(tb, ta)
	default:
		return importantOverlap(ta, tb) || importantOverlap(tb, ta)
	}
}

// episodeNumber extracts an episode or issue number from the raw
// (non-normalized) title. A #-prefixed number wins; otherwise the
// first digit run is used so "EP101" still pairs with "#101".
func episodeNumber(s string) (string, bool) {
	if m := hashNumberRe.FindStringSubmatch(s); m != nil {
		return strings.TrimLeft(m[1], "0"), true
	}
	if m := anyNumberRe.FindStringSubmatch(s); m != nil {
		return strings.TrimLeft(m[1], "0"), true
	}
	return "", false
}

// tokens splits a normalized title into tokens longer than two chars.
func tokens(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if len(w) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

// contentTokens is tokens with English and Dutch stopwords removed.
func contentTokens(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if len(w) > 2 && !stopWords[w] {
			set[w] = struct{}{}
		}
	}
	return set
}

// importantOverlap reports whether at least half of the tokens longer
// than four chars in small also occur in large.
func importantOverlap(small, large map[string]struct{}) bool {
	important, found := 0, 0
	for w := range small {
		if len(w) > 4 {
			important++
			if _, ok := large[w]; ok {
				found++
			}
		}
	}
	if important == 0 {
		return false
	}
	return float64(found)/float64(important) >= 0.5
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
