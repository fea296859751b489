package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/prep/internal/dataframe"
)

// Write writes the DataFrame as JSON records. Keys follow column order and
// missing cells are null.
func (w *JSONWriter) Write(df *dataframe.DataFrame) error {
	buf := bufio.NewWriter(w.writer)

	switch w.options.Format {
	case JSONArray:
		if err := w.writeJSONArray(buf, df); err != nil {
			return err
		}
	case JSONLines:
		if err := w.writeJSONLines(buf, df); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported JSON format: %d", w.options.Format)
	}

	return buf.Flush()
}

// writeJSONArray writes DataFrame as JSON array.
func (w *JSONWriter) writeJSONArray(buf *bufio.Writer, df *dataframe.DataFrame) error {
	buf.WriteByte('[')
	for i := range df.Len() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if w.options.Indent != "" {
			buf.WriteString("\n" + w.options.Indent)
		}
		if err := w.writeRecord(buf, df, i); err != nil {
			return err
		}
	}
	if w.options.Indent != "" && df.Len() > 0 {
		buf.WriteByte('\n')
	}
	_, err := buf.WriteString("]\n")
	return err
}

// writeJSONLines writes DataFrame as JSON Lines.
func (w *JSONWriter) writeJSONLines(buf *bufio.Writer, df *dataframe.DataFrame) error {
	for i := range df.Len() {
		if err := w.writeRecord(buf, df, i); err != nil {
			return err
		}
		if err := buf.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func (w *JSONWriter) writeRecord(buf *bufio.Writer, df *dataframe.DataFrame, row int) error {
	var record bytes.Buffer
	record.WriteByte('{')
	for j, name := range df.Columns() {
		if j > 0 {
			record.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("marshaling column name %q: %w", name, err)
		}
		record.Write(key)
		record.WriteByte(':')

		col, _ := df.ColumnAt(j)
		value, err := json.Marshal(cellValue(col, row))
		if err != nil {
			return fmt.Errorf("marshaling row %d column %s: %w", row, name, err)
		}
		record.Write(value)
	}
	record.WriteByte('}')
	_, err := buf.Write(record.Bytes())
	return err
}

// cellValue returns the Go value encoding/json should emit for a cell.
// Missing cells and non-finite floats are nil.
func cellValue(col dataframe.ISeries, row int) any {
	if col.IsNull(row) {
		return nil
	}
	switch col.DataType().ID() {
	case arrow.FLOAT64:
		v, _ := col.Float64At(row)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case arrow.INT64:
		return json.Number(col.GetAsString(row))
	case arrow.BOOL:
		v, _ := col.Float64At(row)
		return v == 1
	default:
		return col.GetAsString(row)
	}
}
