package trialseq

import "math/rand/v2"

// The sequence generator turns the table size n, the repetition count
// r, and an [Ordering] into the repetitions*conditions index matrix
// the cursor walks. The matrix is built eagerly, once, at handler
// construction.
//
// Reproducibility contract: the generator owns its RNG instance — a
// PCG from math/rand/v2, seeded with the caller's seed in both state
// words — and shuffles with an explicit Fisher–Yates. Given the same
// seed, table size, repetition count, and ordering, the matrix is
// identical across runs and platforms. Without a caller seed, the
// seed is taken from the engine's clock.

// newRNG builds the generator's RNG from the resolved seed.
func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// generateSequence produces the r x n matrix of condition indices for
// the given ordering. Every cell is a valid index into the condition
// table; see [Ordering] for the per-policy coverage guarantees.
func generateSequence(
	n, r int,
	ordering Ordering,
	rng *rand.Rand,
) ([][]int, error) {
	matrix := make([][]int, r)
	switch ordering {
	case OrderSequential:
		for i := range matrix {
			matrix[i] = identityIndices(n)
		}
	case OrderRandom:
		for i := range matrix {
			row := identityIndices(n)
			fisherYates(rng, row)
			matrix[i] = row
		}
	case OrderFullRandom:
		// One flat shuffle across all r*n slots, then resliced into
		// rows. Repetition blocks may repeat or omit individual
		// conditions; only the whole-run multiset is balanced.
		flat := make([]int, 0, n*r)
		for i := 0; i < r; i++ {
			flat = append(flat, identityIndices(n)...)
		}
		fisherYates(rng, flat)
		for i := range matrix {
			matrix[i] = flat[i*n : (i+1)*n]
		}
	default:
		return nil, &UnknownOrderingError{Ordering: ordering}
	}
	return matrix, nil
}

// identityIndices returns [0, 1, ..., n-1].
func identityIndices(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// fisherYates shuffles s in place with the classic downward
// Fisher–Yates walk: for i from len-1 down to 1, swap s[i] with a
// uniformly chosen s[j], j in [0, i].
func fisherYates(rng *rand.Rand, s []int) {
	for i := len(s) - 1; i > 0; i-- {
		j := int(rng.Uint64N(uint64(i + 1)))
		s[i], s[j] = s[j], s[i]
	}
}
