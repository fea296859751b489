package model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"strconv"

	"github.com/paveg/prep/internal/errors"
	"github.com/paveg/prep/internal/validation"
)

const opSplit = "StratifiedSplit"

// Classes returns the distinct labels in sorted order. Numeric labels sort by
// value, everything else lexically.
func Classes(labels []string, numeric bool) []string {
	out := slices.Clone(labels)
	if numeric {
		slices.SortFunc(out, func(a, b string) int {
			fa, _ := strconv.ParseFloat(a, 64)
			fb, _ := strconv.ParseFloat(b, 64)
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		})
	} else {
		slices.Sort(out)
	}
	return slices.Compact(out)
}

// StratifiedSplit partitions row indices into train and test sets so that
// every class keeps roughly its share of rows on both sides. The test set
// holds ceil(testSize*n) rows. Per-class test counts are the floor of each
// class's proportional share, with leftover rows going to the classes with
// the largest remainders. The same seed always yields the same split.
//
// It fails when a class has fewer than two rows, or when either side is too
// small to hold one row of every class.
func StratifiedSplit(labels, classes []string, testSize float64, seed uint64) (train, test []int, err error) {
	if err := validation.NewRangeValidator(opSplit, "test_size", testSize, 0, 1).Validate(); err != nil {
		return nil, nil, err
	}

	n := len(labels)
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, nil, errors.NewInvalidInputError(opSplit,
			fmt.Sprintf("test_size=%g with %d samples leaves an empty train or test set", testSize, n))
	}

	members := make(map[string][]int, len(classes))
	for i, label := range labels {
		members[label] = append(members[label], i)
	}

	for _, class := range classes {
		if count := len(members[class]); count < 2 {
			return nil, nil, errors.NewStratifyError(opSplit, fmt.Sprintf(
				"the least populated class %q has only %d member; every class needs at least 2", class, count))
		}
	}
	if nTest < len(classes) {
		return nil, nil, errors.NewStratifyError(opSplit, fmt.Sprintf(
			"test size %d should be greater or equal to the number of classes %d", nTest, len(classes)))
	}
	if nTrain < len(classes) {
		return nil, nil, errors.NewStratifyError(opSplit, fmt.Sprintf(
			"train size %d should be greater or equal to the number of classes %d", nTrain, len(classes)))
	}

	counts := make([]int, len(classes))
	for k, class := range classes {
		counts[k] = len(members[class])
	}
	testCounts := allocate(counts, n, nTest)

	rng := rand.New(rand.NewPCG(seed, seed))
	for k, class := range classes {
		rows := slices.Clone(members[class])
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		test = append(test, rows[:testCounts[k]]...)
		train = append(train, rows[testCounts[k]:]...)
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })

	return train, test, nil
}

// allocate splits total draws across classes proportionally to counts.
// Leftovers go to the largest fractional parts, earlier classes first on ties,
// and never push a class past its size.
func allocate(counts []int, n, total int) []int {
	out := make([]int, len(counts))
	remainders := make([]float64, len(counts))
	assigned := 0
	for k, c := range counts {
		share := float64(total) * float64(c) / float64(n)
		out[k] = int(math.Floor(share))
		remainders[k] = share - float64(out[k])
		assigned += out[k]
	}

	order := make([]int, len(counts))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	for left := total - assigned; left > 0; {
		progressed := false
		for _, k := range order {
			if left == 0 {
				break
			}
			if out[k] < counts[k] {
				out[k]++
				left--
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return out
}
