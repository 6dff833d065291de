package containers

import (
	"errors"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/rand"
)

// ErrRankOutOfRange is returned when k is not within [1, len(values)]
var ErrRankOutOfRange = errors.New("containers: rank out of range")

// KthSmallest returns the k-th smallest value (1-based) using randomized
// quickselect. The input slice is not modified.
func KthSmallest[T constraints.Ordered](values []T, k int, rng *rand.Rand) (T, error) {
	var zero T
	if k < 1 || k > len(values) {
		return zero, ErrRankOutOfRange
	}

	work := make([]T, len(values))
	copy(work, values)

	lo, hi := 0, len(work) // current window is work[lo:hi]
	k--                    // 0-based rank within the whole slice
	for {
		if hi-lo == 1 {
			return work[lo], nil
		}
		pivot := work[lo+rng.Intn(hi-lo)]

		// Three-way partition: [lo,lt) < pivot, [lt,gt) == pivot, [gt,hi) > pivot
		lt, i, gt := lo, lo, hi
		for i < gt {
			switch {
			case work[i] < pivot:
				work[lt], work[i] = work[i], work[lt]
				lt++
				i++
			case work[i] > pivot:
				gt--
				work[gt], work[i] = work[i], work[gt]
			default:
				i++
			}
		}

		switch {
		case k < lt:
			hi = lt
		case k >= gt:
			lo = gt
		default:
			return pivot, nil
		}
	}
}

// Median returns the lower median of values, or the zero value for an empty slice
func Median[T constraints.Ordered](values []T, rng *rand.Rand) T {
	if len(values) == 0 {
		var zero T
		return zero
	}
	m, _ := KthSmallest(values, (len(values)+1)/2, rng)
	return m
}
