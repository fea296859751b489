package clean

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/cespare/xxhash/v2"
	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/errors"
	"github.com/paveg/prep/internal/logger"
	"github.com/paveg/prep/internal/validation"
)

// RemoveDuplicates drops every row that equals an earlier row in all columns,
// keeping first occurrences in their original order. Missing cells equal
// missing cells.
//
// When subset names columns, rows are compared on those columns only; the
// kept rows still carry every column.
func RemoveDuplicates(df *dataframe.DataFrame, subset ...string) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, opDedupe, subset...); err != nil {
		return nil, err
	}
	if len(subset) == 0 {
		subset = df.Columns()
	}

	cols := make([]dataframe.ISeries, 0, len(subset))
	for _, name := range subset {
		col, _ := df.Column(name)
		cols = append(cols, col)
	}

	n := df.Len()
	buckets := make(map[uint64][]int, n)
	keep := make([]int, 0, n)
	digest := xxhash.New()
	var scratch [8]byte

	for row := 0; row < n; row++ {
		digest.Reset()
		for _, col := range cols {
			writeCell(digest, col, row, scratch[:])
		}
		sum := digest.Sum64()

		duplicate := false
		for _, earlier := range buckets[sum] {
			if rowsEqual(cols, row, earlier) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		buckets[sum] = append(buckets[sum], row)
		keep = append(keep, row)
	}

	out, err := df.Take(keep)
	if err != nil {
		return nil, errors.NewInternalError(opDedupe, err)
	}

	logger.Default().Debug("removed duplicate rows",
		logger.Op(opDedupe),
		logger.Rows(n),
		"dropped", n-len(keep))
	return out, nil
}

// writeCell feeds one cell into the digest. Nulls and values are tagged so a
// null never hashes like an empty string.
func writeCell(d *xxhash.Digest, col dataframe.ISeries, row int, scratch []byte) {
	if col.IsNull(row) {
		_, _ = d.Write([]byte{0})
		return
	}
	_, _ = d.Write([]byte{1})
	if col.DataType().ID() == arrow.FLOAT64 {
		v, _ := col.Float64At(row)
		// +0 folds -0 into 0 so equal floats hash alike.
		binary.LittleEndian.PutUint64(scratch, math.Float64bits(v+0))
		_, _ = d.Write(scratch)
		return
	}
	_, _ = d.WriteString(col.GetAsString(row))
	_, _ = d.Write([]byte{0xff})
}

func rowsEqual(cols []dataframe.ISeries, a, b int) bool {
	for _, col := range cols {
		nullA, nullB := col.IsNull(a), col.IsNull(b)
		if nullA || nullB {
			if nullA != nullB {
				return false
			}
			continue
		}
		if col.DataType().ID() == arrow.FLOAT64 {
			va, _ := col.Float64At(a)
			vb, _ := col.Float64At(b)
			if va != vb {
				return false
			}
			continue
		}
		if col.GetAsString(a) != col.GetAsString(b) {
			return false
		}
	}
	return true
}
