package byteslice

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see the
// metrics/prometheus package for a Prometheus implementation.
type MetricsCollector interface {
	// RecordScan is called after each column scan.
	// rows is the number of rows evaluated, err is nil if successful.
	RecordScan(rows int, duration time.Duration, err error)

	// RecordLoad is called after each bulk, text or deserialization load.
	RecordLoad(rows int, duration time.Duration, err error)

	// RecordResize is called after each column resize.
	RecordResize(from, to int, err error)

	// RecordSerialize is called after a column is written (write=true) or read.
	// bytes is the number of logical bytes transferred.
	RecordSerialize(bytes int64, write bool, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordScan(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordResize(int, int, error) {}
func (NoopMetricsCollector) RecordSerialize(int64, bool, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ScanCount       atomic.Int64
	ScanErrors      atomic.Int64
	ScanRows        atomic.Int64
	ScanTotalNanos  atomic.Int64
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
	LoadRows        atomic.Int64
	ResizeCount     atomic.Int64
	ResizeErrors    atomic.Int64
	BytesWritten    atomic.Int64
	BytesRead       atomic.Int64
	SerializeErrors atomic.Int64
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(rows int, duration time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ScanErrors.Add(1)
		return
	}
	b.ScanRows.Add(int64(rows))
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(rows int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadRows.Add(int64(rows))
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordResize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResize(_, _ int, err error) {
	b.ResizeCount.Add(1)
	if err != nil {
		b.ResizeErrors.Add(1)
	}
}

// RecordSerialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSerialize(bytes int64, write bool, _ time.Duration, err error) {
	if err != nil {
		b.SerializeErrors.Add(1)
	}
	if write {
		b.BytesWritten.Add(bytes)
	} else {
		b.BytesRead.Add(bytes)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ScanCount:       b.ScanCount.Load(),
		ScanErrors:      b.ScanErrors.Load(),
		ScanRows:        b.ScanRows.Load(),
		ScanAvgNanos:    b.avgScanNanos(),
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
		LoadRows:        b.LoadRows.Load(),
		ResizeCount:     b.ResizeCount.Load(),
		ResizeErrors:    b.ResizeErrors.Load(),
		BytesWritten:    b.BytesWritten.Load(),
		BytesRead:       b.BytesRead.Load(),
		SerializeErrors: b.SerializeErrors.Load(),
	}
}

func (b *BasicMetricsCollector) avgScanNanos() int64 {
	count := b.ScanCount.Load()
	if count == 0 {
		return 0
	}
	return b.ScanTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ScanCount       int64
	ScanErrors      int64
	ScanRows        int64
	ScanAvgNanos    int64
	LoadCount       int64
	LoadErrors      int64
	LoadRows        int64
	ResizeCount     int64
	ResizeErrors    int64
	BytesWritten    int64
	BytesRead       int64
	SerializeErrors int64
}
