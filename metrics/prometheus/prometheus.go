// Package prometheus exports byteslice column metrics to Prometheus.
//
//	reg := prom.NewRegistry()
//	col, _ := byteslice.NewColumn(byteslice.TypeByteSlicePadRight, 12, n,
//		byteslice.WithMetricsCollector(prometheus.NewCollector(prometheus.WithRegisterer(reg))))
package prometheus

import (
	"time"

	"github.com/hupe1980/byteslice"
	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "byteslice"

// Option configures a Collector.
type Option func(*options)

type options struct {
	registerer prom.Registerer
	buckets    []float64
	constLabel prom.Labels
}

// WithRegisterer sets the registry the collector registers its metrics with.
// Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(r prom.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// WithBuckets overrides the scan duration histogram buckets.
func WithBuckets(b []float64) Option {
	return func(o *options) {
		o.buckets = b
	}
}

// WithConstLabels attaches constant labels (e.g. column name) to every metric.
func WithConstLabels(l prom.Labels) Option {
	return func(o *options) {
		o.constLabel = l
	}
}

// Collector implements byteslice.MetricsCollector on top of client_golang.
type Collector struct {
	scans        *prom.CounterVec
	scanDuration prom.Histogram
	scannedRows  prom.Counter
	loads        *prom.CounterVec
	loadedRows   prom.Counter
	resizes      *prom.CounterVec
	serialized   *prom.CounterVec
}

var _ byteslice.MetricsCollector = (*Collector)(nil)

// NewCollector creates and registers a Collector. It panics if registration
// fails, like prometheus.MustRegister.
func NewCollector(optFns ...Option) *Collector {
	opts := options{
		registerer: prom.DefaultRegisterer,
		buckets:    prom.ExponentialBuckets(0.00001, 4, 10),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		scans: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "scans_total",
			Help:        "Total column scans by status",
			ConstLabels: opts.constLabel,
		}, []string{"status"}),
		scanDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace:   namespace,
			Name:        "scan_duration_seconds",
			Help:        "Latency of column scans",
			Buckets:     opts.buckets,
			ConstLabels: opts.constLabel,
		}),
		scannedRows: prom.NewCounter(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "scanned_rows_total",
			Help:        "Rows evaluated by successful scans",
			ConstLabels: opts.constLabel,
		}),
		loads: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "loads_total",
			Help:        "Total bulk loads by status",
			ConstLabels: opts.constLabel,
		}, []string{"status"}),
		loadedRows: prom.NewCounter(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "loaded_rows_total",
			Help:        "Rows written by bulk loads",
			ConstLabels: opts.constLabel,
		}),
		resizes: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "resizes_total",
			Help:        "Total column resizes by status",
			ConstLabels: opts.constLabel,
		}, []string{"status"}),
		serialized: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "serialized_bytes_total",
			Help:        "Bytes moved by column serialization",
			ConstLabels: opts.constLabel,
		}, []string{"direction"}),
	}

	opts.registerer.MustRegister(
		c.scans,
		c.scanDuration,
		c.scannedRows,
		c.loads,
		c.loadedRows,
		c.resizes,
		c.serialized,
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordScan implements byteslice.MetricsCollector.
func (c *Collector) RecordScan(rows int, d time.Duration, err error) {
	c.scans.WithLabelValues(status(err)).Inc()
	c.scanDuration.Observe(d.Seconds())
	if err == nil {
		c.scannedRows.Add(float64(rows))
	}
}

// RecordLoad implements byteslice.MetricsCollector.
func (c *Collector) RecordLoad(rows int, _ time.Duration, err error) {
	c.loads.WithLabelValues(status(err)).Inc()
	if err == nil {
		c.loadedRows.Add(float64(rows))
	}
}

// RecordResize implements byteslice.MetricsCollector.
func (c *Collector) RecordResize(_, _ int, err error) {
	c.resizes.WithLabelValues(status(err)).Inc()
}

// RecordSerialize implements byteslice.MetricsCollector.
func (c *Collector) RecordSerialize(bytes int64, write bool, _ time.Duration, _ error) {
	dir := "read"
	if write {
		dir = "write"
	}
	if bytes > 0 {
		c.serialized.WithLabelValues(dir).Add(float64(bytes))
	}
}
