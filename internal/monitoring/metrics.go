// Package monitoring records how long each cleaning step takes and how it
// changes the shape of the frame it is given.
package monitoring

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"
	"text/tabwriter"
	"time"
)

// Shape is the row and column count of a frame.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// OperationMetrics represents performance metrics for a single operation.
type OperationMetrics struct {
	Operation  string        `json:"operation"`
	Duration   time.Duration `json:"duration"`
	MemoryUsed int64         `json:"memory_used"`
	Input      Shape         `json:"input"`
	Output     Shape         `json:"output"`
	Failed     bool          `json:"failed"`
}

// RowsRemoved returns how many rows the operation dropped.
func (m OperationMetrics) RowsRemoved() int {
	return m.Input.Rows - m.Output.Rows
}

// ColumnsRemoved returns how many columns the operation dropped. It is
// negative when columns were added, as one-hot encoding does.
func (m OperationMetrics) ColumnsRemoved() int {
	return m.Input.Columns - m.Output.Columns
}

// MetricsCollector collects and stores metrics for cleaning operations.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []OperationMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]OperationMetrics, 0),
		enabled: enabled,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// RecordOperation runs fn and records its duration and the shape it returns.
// A failed operation is recorded with an output shape equal to its input.
func (mc *MetricsCollector) RecordOperation(operation string, input Shape, fn func() (Shape, error)) error {
	if !mc.IsEnabled() {
		_, err := fn()
		return err
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	start := time.Now()
	output, err := fn()
	duration := time.Since(start)

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	// TotalAlloc only grows, unlike Alloc which a GC cycle can shrink mid-operation
	memoryUsed := int64(memAfter.TotalAlloc - memBefore.TotalAlloc) //nolint:gosec // bounded by process allocation

	if err != nil {
		output = input
	}

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, OperationMetrics{
		Operation:  operation,
		Duration:   duration,
		MemoryUsed: memoryUsed,
		Input:      input,
		Output:     output,
		Failed:     err != nil,
	})
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []OperationMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]OperationMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	var summary MetricsSummary
	summary.OperationCounts = make(map[string]int)
	for _, metric := range mc.metrics {
		summary.TotalDuration += metric.Duration
		summary.TotalMemory += metric.MemoryUsed
		summary.RowsRemoved += metric.RowsRemoved()
		summary.ColumnsRemoved += metric.ColumnsRemoved()
		summary.OperationCounts[metric.Operation]++
		if metric.Failed {
			summary.Failures++
		}
	}
	summary.TotalOperations = len(mc.metrics)
	summary.AverageDuration = summary.TotalDuration / time.Duration(len(mc.metrics))
	return summary
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalOperations int            `json:"total_operations"`
	Failures        int            `json:"failures"`
	TotalDuration   time.Duration  `json:"total_duration"`
	AverageDuration time.Duration  `json:"average_duration"`
	TotalMemory     int64          `json:"total_memory"`
	RowsRemoved     int            `json:"rows_removed"`
	ColumnsRemoved  int            `json:"columns_removed"`
	OperationCounts map[string]int `json:"operation_counts"`
}

// WriteReport writes one aligned line per recorded operation followed by
// the summary totals.
func (mc *MetricsCollector) WriteReport(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tDURATION\tROWS\tCOLUMNS\tSTATUS")
	for _, m := range mc.GetMetrics() {
		status := "ok"
		if m.Failed {
			status = "failed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d -> %d\t%d -> %d\t%s\n",
			m.Operation, m.Duration.Round(time.Microsecond),
			m.Input.Rows, m.Output.Rows, m.Input.Columns, m.Output.Columns, status)
	}

	summary := mc.GetSummary()
	fmt.Fprintf(tw, "total\t%s\t%d removed\t%d removed\t%d operations, %d failed\n",
		summary.TotalDuration.Round(time.Microsecond),
		summary.RowsRemoved, summary.ColumnsRemoved,
		summary.TotalOperations, summary.Failures)
	return tw.Flush()
}

// Operations returns the distinct operation names recorded, sorted.
func (s MetricsSummary) Operations() []string {
	names := make([]string, 0, len(s.OperationCounts))
	for name := range s.OperationCounts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
