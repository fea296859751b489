package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/prep/internal/series"
)

// ISeries provides a type-erased interface for Series of any type
type ISeries interface {
	Name() string
	Len() int
	Kind() series.Kind
	NullN() int
	DataType() arrow.DataType
	IsNull(index int) bool
	Float64At(index int) (float64, bool)
	GetAsString(index int) string
	String() string
	Array() arrow.Array
	Release()
}
