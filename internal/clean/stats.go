package clean

import (
	"slices"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"
)

func mean(xs []float64) float64 {
	return stat.Mean(xs, nil)
}

// median averages the two middle values for an even count.
func median(xs []float64) float64 {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// firstMode returns the most frequent value; among ties, the smallest.
// ok is false for an empty slice.
func firstMode[T constraints.Ordered](xs []T) (mode T, ok bool) {
	counts := make(map[T]int, len(xs))
	best := 0
	for _, x := range xs {
		counts[x]++
		c := counts[x]
		if c > best || (c == best && x < mode) {
			mode, best = x, c
		}
	}
	return mode, best > 0
}
