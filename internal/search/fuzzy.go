package search

// PartialRatio scores how well the shorter string matches its best-aligned
// window of the longer one, from 0 to 100. Each window is scored with the
// normalised Indel similarity 200*LCS/(len(a)+len(window)), so a swapped
// pair of letters costs one common character rather than two edits.
// Windows clipped at either end of the longer string are tried too.
// Inputs are compared as given; callers fold case and accents first.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	best := partialRatio(ra, rb)
	if len(ra) == len(rb) && best < 100 {
		if s := partialRatio(rb, ra); s > best {
			best = s
		}
	}
	return best
}

func partialRatio(short, long []rune) float64 {
	n := len(short)
	best := 0.0
	try := func(window []rune) bool {
		if s := indelRatio(short, window); s > best {
			best = s
		}
		return best == 100
	}

	for k := 1; k < n; k++ {
		if try(long[:k]) {
			return best
		}
	}
	for i := 0; i+n <= len(long); i++ {
		if try(long[i : i+n]) {
			return best
		}
	}
	for k := n - 1; k >= 1; k-- {
		if try(long[len(long)-k:]) {
			return best
		}
	}
	return best
}

func indelRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcsLength(a, b)) / float64(total)
}

// lcsLength is the classic two-row dynamic programme.
func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
