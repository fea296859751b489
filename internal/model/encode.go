// Package model holds the demonstration classification pipeline: one-hot
// encoding, a stratified train/test split, L2 logistic regression and the
// evaluation report.
package model

import (
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/errors"
	"github.com/paveg/prep/internal/series"
)

const opEncode = "OneHotEncode"

// OneHotEncode replaces every categorical column with one boolean indicator
// column per observed category, named <column>_<category>. Indicators are
// appended after the remaining columns, categories in sorted order. A missing
// cell is false in every indicator of its column. An indicator name that is
// already taken by another column is an invalid-input error.
func OneHotEncode(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	categorical := df.ColumnsOfKind(series.KindCategorical)
	out := df.Drop(categorical...)
	if len(categorical) == 0 {
		return out, nil
	}

	mem := memory.NewGoAllocator()
	for _, name := range categorical {
		col, _ := df.Column(name)
		arr := col.Array()
		values, valid, err := series.Strings(arr)
		arr.Release()
		if err != nil {
			out.Release()
			return nil, errors.NewUnsupportedTypeError(opEncode, col.DataType().String())
		}

		for _, category := range categories(values, valid) {
			indicatorName := name + "_" + category
			if out.HasColumn(indicatorName) {
				out.Release()
				return nil, errors.NewValidationError(opEncode, name,
					fmt.Sprintf("indicator %q collides with an existing column", indicatorName))
			}
			indicator := make([]bool, len(values))
			for i, v := range values {
				indicator[i] = valid[i] && v == category
			}
			next, err := out.WithColumn(series.New(indicatorName, indicator, mem))
			if err != nil {
				out.Release()
				return nil, errors.NewInternalError(opEncode, err)
			}
			out.Release()
			out = next
		}
	}
	return out, nil
}

func categories(values []string, valid []bool) []string {
	seen := make(map[string]struct{})
	for i, v := range values {
		if valid[i] {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
