package eval

// CharacterErrorRate computes the Levenshtein distance between reference and
// hypothesis (unit costs), normalized by max(len(reference), 1). Inputs are
// expected to be canonicalized JSON text; the caller owns canonicalization.
func CharacterErrorRate(reference, hypothesis string) float64 {
	ref := []rune(reference)
	hyp := []rune(hypothesis)
	m, n := len(ref), len(hyp)

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	denom := m
	if denom < 1 {
		denom = 1
	}
	return float64(prev[n]) / float64(denom)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
