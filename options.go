package byteslice

import (
	"runtime"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hupe1980/byteslice/internal/resource"
)

const tracerName = "github.com/hupe1980/byteslice"

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	tracer           trace.Tracer
	parallelism      int
	controller       *resource.Controller
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		tracer:           noop.NewTracerProvider().Tracer(tracerName),
		parallelism:      runtime.GOMAXPROCS(0),
	}
}

// Option configures a Column.
type Option func(*options)

// WithLogger sets the structured logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the collector notified after scans, loads,
// resizes and serialization.
//
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithTracer sets the OpenTelemetry tracer used for column spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithParallelism bounds the number of blocks scanned concurrently by one call.
// Values below 1 fall back to GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.parallelism = n
	}
}

// WithResourceController shares memory accounting and worker slots across columns.
func WithResourceController(c *ResourceController) Option {
	return func(o *options) {
		o.controller = c
	}
}

// ResourceController bounds block memory, concurrent block scans and
// serialization throughput across all columns that share it.
type ResourceController = resource.Controller

// ResourceConfig holds the limits of a ResourceController.
type ResourceConfig = resource.Config

// NewResourceController creates a controller with the given limits.
// Zero limits are not enforced.
func NewResourceController(cfg ResourceConfig) *ResourceController {
	return resource.NewController(cfg)
}
