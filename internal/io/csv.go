package io

import (
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/series"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

type columnType int

const (
	typeString columnType = iota
	typeBool
	typeInt
	typeFloat
)

// Read reads CSV data and returns a DataFrame
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	var dataRows [][]string

	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		numCols := len(records[0])
		headers = make([]string, numCols)
		for i := 0; i < numCols; i++ {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	// Transpose; short rows read as missing cells
	numCols := len(headers)
	columns := make([][]string, numCols)
	valid := make([][]bool, numCols)
	for i := 0; i < numCols; i++ {
		columns[i] = make([]string, len(dataRows))
		valid[i] = make([]bool, len(dataRows))
		for j, row := range dataRows {
			if i < len(row) && !r.isNull(row[i]) {
				columns[i][j] = row[i]
				valid[i][j] = true
			}
		}
	}

	seriesList := make([]dataframe.ISeries, 0, numCols)
	for i, header := range headers {
		s, err := r.createSeries(header, columns[i], valid[i])
		if err != nil {
			for _, done := range seriesList {
				done.Release()
			}
			return nil, fmt.Errorf("creating series for column %s: %w", header, err)
		}
		seriesList = append(seriesList, s)
	}

	df, err := dataframe.NewSafe(seriesList...)
	if err != nil {
		for _, s := range seriesList {
			s.Release()
		}
		return nil, err
	}
	return df, nil
}

func (r *CSVReader) isNull(value string) bool {
	return slices.Contains(r.options.NullValues, value)
}

// createSeries builds a series of the inferred type; invalid cells become nulls
func (r *CSVReader) createSeries(name string, data []string, valid []bool) (dataframe.ISeries, error) {
	switch inferDataType(data, valid) {
	case typeBool:
		values := make([]bool, len(data))
		for i, v := range data {
			values[i] = valid[i] && strings.EqualFold(v, trueStr)
		}
		return newSeries(name, values, valid, r)
	case typeInt:
		values := make([]int64, len(data))
		for i, v := range data {
			if valid[i] {
				values[i], _ = strconv.ParseInt(v, 10, 64)
			}
		}
		return newSeries(name, values, valid, r)
	case typeFloat:
		values := make([]float64, len(data))
		for i, v := range data {
			if valid[i] {
				values[i], _ = strconv.ParseFloat(v, 64)
			}
		}
		return newSeries(name, values, valid, r)
	default:
		return newSeries(name, data, valid, r)
	}
}

func newSeries[T any](name string, values []T, valid []bool, r *CSVReader) (dataframe.ISeries, error) {
	s, err := series.NewSafe(name, values, valid, r.mem)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// inferDataType picks the most specific type every present cell parses as.
// A column with no present cells is a string column.
func inferDataType(data []string, valid []bool) columnType {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	hasValue := false

	for i, value := range data {
		if !valid[i] {
			continue
		}
		hasValue = true

		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}
		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	switch {
	case !hasValue:
		return typeString
	case canBeBool:
		return typeBool
	case canBeInt:
		return typeInt
	case canBeFloat:
		return typeFloat
	default:
		return typeString
	}
}

// Write writes the DataFrame to CSV format
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	if w.options.Header {
		if err := csvWriter.Write(df.Columns()); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	row := make([]string, df.Width())
	for i := 0; i < df.Len(); i++ {
		for j := range row {
			column, _ := df.ColumnAt(j)
			if column.IsNull(i) {
				row[j] = w.options.NullRepresentation
				continue
			}
			row[j] = column.GetAsString(i)
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
