package eval

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxErrorFraction is the fuzzy-match tolerance: a field matches when
// 1 - ratio is at most this fraction.
const DefaultMaxErrorFraction = 0.1

// punctPattern strips anything that is not a letter, digit, underscore, or
// whitespace in any script.
var punctPattern = regexp.MustCompile(`[^\p{L}\p{N}\s_]`)

// Comparator computes field-level accuracy between a reference and a
// candidate record, both given as JSON text.
type Comparator struct {
	MaxErrorFraction float64
}

// NewComparator creates a Comparator with the default fuzzy tolerance.
func NewComparator() *Comparator {
	return &Comparator{MaxErrorFraction: DefaultMaxErrorFraction}
}

// StrictAccuracy is the fraction of reference leaf paths whose candidate
// value is byte-identical at the identical path. Returns 0.0 when either
// side fails to parse or the reference has no leaves.
func (c *Comparator) StrictAccuracy(refJSON, candJSON string) float64 {
	refNode, err := ParseRecord(refJSON)
	if err != nil {
		return 0.0
	}
	candNode, err := ParseRecord(candJSON)
	if err != nil {
		return 0.0
	}

	refEntries := Flatten(refNode)
	if len(refEntries) == 0 {
		return 0.0
	}
	candMap := FlattenToMap(candNode)

	correct := 0
	for _, e := range refEntries {
		if v, ok := candMap[e.Path]; ok && v == e.Value {
			correct++
		}
	}
	return float64(correct) / float64(len(refEntries))
}

// FuzzyAccuracy relaxes the value test to a similarity check; a missing
// candidate path compares as the empty string. The denominator is identical
// to StrictAccuracy, so fuzzy never drops below strict. A renamed key is a miss
// even when its value matches.
func (c *Comparator) FuzzyAccuracy(refJSON, candJSON string) float64 {
	refNode, err := ParseRecord(refJSON)
	if err != nil {
		return 0.0
	}
	candNode, err := ParseRecord(candJSON)
	if err != nil {
		return 0.0
	}

	refEntries := Flatten(refNode)
	if len(refEntries) == 0 {
		return 0.0
	}
	candMap := FlattenToMap(candNode)

	correct := 0
	for _, e := range refEntries {
		if c.fieldMatches(e.Value, candMap[e.Path]) {
			correct++
		}
	}
	return float64(correct) / float64(len(refEntries))
}

// fieldMatches normalizes both values and requires the similarity ratio to
// stay within MaxErrorFraction. Two empty normalized values trivially match.
func (c *Comparator) fieldMatches(ref, cand string) bool {
	ref = normalizeField(ref)
	cand = normalizeField(cand)
	if ref == "" && cand == "" {
		return true
	}
	return 1.0-similarityRatio([]rune(ref), []rune(cand)) <= c.MaxErrorFraction
}

func normalizeField(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = punctPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// similarityRatio is 2*M/(len(a)+len(b)) where M is the total size of the
// longest matching blocks found by repeatedly taking the longest common
// contiguous match and recursing on both sides.
func similarityRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matches := matchingChars(a, b)
	return 2.0 * float64(matches) / float64(total)
}

func matchingChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingChars(a[:ai], b[:bi]) +
		matchingChars(a[ai+size:], b[bi+size:])
}

// longestMatch finds the longest contiguous match, preferring the earliest
// start in a, then in b.
func longestMatch(a, b []rune) (bestA, bestB, bestSize int) {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	j2len := make(map[int]int)
	for i, r := range a {
		newJ2len := make(map[int]int)
		for _, j := range b2j[r] {
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				bestA = i - k + 1
				bestB = j - k + 1
				bestSize = k
			}
		}
		j2len = newJ2len
	}
	return bestA, bestB, bestSize
}
