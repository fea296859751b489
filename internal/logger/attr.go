package logger

import (
	"log/slog"
	"time"
)

// Op names the operation a record belongs to.
func Op(name string) slog.Attr {
	return slog.String("op", name)
}

// Column names the column a record is about.
func Column(name string) slog.Attr {
	return slog.String("column", name)
}

// Columns lists several column names.
func Columns(names []string) slog.Attr {
	return slog.Any("columns", names)
}

// Rows records a row count.
func Rows(n int) slog.Attr {
	return slog.Int("rows", n)
}

// Duration records elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Error creates an error attribute, or an empty one for nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}
