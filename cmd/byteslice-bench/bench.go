package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hupe1980/byteslice"
	"github.com/hupe1980/byteslice/blobstore"
	"github.com/hupe1980/byteslice/blobstore/s3"
	bsprom "github.com/hupe1980/byteslice/metrics/prometheus"
	"github.com/hupe1980/byteslice/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// loadChunk bounds the code buffer held while populating a column.
const loadChunk = 1 << 20

type bench struct {
	cfg     *config
	out     io.Writer
	opts    []byteslice.Option
	tracer  trace.Tracer
	metrics *byteslice.BasicMetricsCollector
}

func run(ctx context.Context, cfg *config, out io.Writer) error {
	b := &bench{
		cfg:    cfg,
		out:    out,
		tracer: noop.NewTracerProvider().Tracer(""),
	}

	logger := byteslice.NewTextLogger(cfg.LogLevel)
	b.opts = append(b.opts, byteslice.WithLogger(logger), byteslice.WithParallelism(cfg.Parallelism))

	if cfg.Trace {
		shutdown, err := b.setupTracing()
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	if cfg.MetricsAddr != "" {
		stop, err := b.serveMetrics()
		if err != nil {
			return err
		}
		defer stop()
	} else {
		b.metrics = &byteslice.BasicMetricsCollector{}
		b.opts = append(b.opts, byteslice.WithMetricsCollector(b.metrics))
	}

	ctx, span := b.tracer.Start(ctx, "byteslice-bench")
	defer span.End()

	printHost(ctx, out)
	fmt.Fprintf(out, "column type    = %s\n", cfg.Type)
	fmt.Fprintf(out, "table size     = %d\n", cfg.Size)
	fmt.Fprintf(out, "bit width      = %d\n", cfg.Bits)
	fmt.Fprintf(out, "selectivity    = %g\n", cfg.Selectivity)
	fmt.Fprintf(out, "repeat         = %d\n", cfg.Repeat)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fmt.Fprintf(out, "seed           = %d\n", seed)

	col, err := byteslice.NewColumn(cfg.Type, cfg.Bits, cfg.Size, b.opts...)
	if err != nil {
		return err
	}
	defer col.Close()

	var ref *byteslice.Column
	if cfg.Verify {
		ref, err = byteslice.NewColumn(byteslice.TypeNaive, cfg.Bits, cfg.Size, b.opts...)
		if err != nil {
			return err
		}
		defer ref.Close()
	}

	start := time.Now()
	if err := populate(testutil.NewRNG(seed), cfg, col, ref); err != nil {
		return err
	}
	fmt.Fprintf(out, "load           = %s\n", time.Since(start).Round(time.Millisecond))

	bv, err := byteslice.NewBitVectorFor(col)
	if err != nil {
		return err
	}

	literal := testutil.LiteralForSelectivity(cfg.Bits, cfg.Selectivity)
	var total time.Duration
	for r := 0; r < cfg.Repeat; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := time.Now()
		if err := col.ScanContext(ctx, byteslice.Less, literal, bv, byteslice.BitwiseSet); err != nil {
			return err
		}
		d := time.Since(t)
		total += d
		fmt.Fprintf(out, "scan %-9d = %.6fs %.3f ns/row count=%d\n",
			r, d.Seconds(), float64(d.Nanoseconds())/float64(cfg.Size), bv.CountOnes())
	}
	avg := total / time.Duration(cfg.Repeat)
	fmt.Fprintf(out, "wall time (s), cost (ns/row)\n%.6f, %.3f\n",
		avg.Seconds(), float64(avg.Nanoseconds())/float64(cfg.Size))

	if ref != nil {
		if err := verify(ctx, ref, bv, literal); err != nil {
			return err
		}
		fmt.Fprintln(out, "verify         = ok")
	}

	if err := b.snapshot(ctx, col); err != nil {
		return err
	}

	if b.metrics != nil {
		s := b.metrics.GetStats()
		fmt.Fprintf(out, "scans=%d rows=%d avg=%s loads=%d\n",
			s.ScanCount, s.ScanRows, time.Duration(s.ScanAvgNanos), s.LoadCount)
	}
	return nil
}

func populate(rng *testutil.RNG, cfg *config, col, ref *byteslice.Column) error {
	for off := 0; off < cfg.Size; off += loadChunk {
		codes := rng.Codes(min(loadChunk, cfg.Size-off), cfg.Bits)
		if err := col.BulkLoadArray(codes, off); err != nil {
			return err
		}
		if ref != nil {
			if err := ref.BulkLoadArray(codes, off); err != nil {
				return err
			}
		}
	}
	return nil
}

// verify scans ref with the same predicate and checks both results hold the
// same rows.
func verify(ctx context.Context, ref *byteslice.Column, got *byteslice.BitVector, literal uint64) error {
	want, err := byteslice.NewBitVectorFor(ref)
	if err != nil {
		return err
	}
	if err := ref.ScanContext(ctx, byteslice.Less, literal, want, byteslice.BitwiseSet); err != nil {
		return err
	}
	n := want.CountOnes()
	if g := got.CountOnes(); g != n {
		return fmt.Errorf("verify: naive count %d, got %d", n, g)
	}
	if err := want.And(got); err != nil {
		return err
	}
	if both := want.CountOnes(); both != n {
		return fmt.Errorf("verify: %d of %d rows differ", n-both, n)
	}
	return nil
}

func (b *bench) setupTracing() (func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(b.out), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	b.tracer = tp.Tracer("github.com/hupe1980/byteslice/cmd/byteslice-bench")
	b.opts = append(b.opts, byteslice.WithTracer(tp.Tracer("github.com/hupe1980/byteslice")))
	return tp.Shutdown, nil
}

func (b *bench) serveMetrics() (func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	b.opts = append(b.opts, byteslice.WithMetricsCollector(bsprom.NewCollector(bsprom.WithRegisterer(reg))))

	ln, err := net.Listen("tcp", b.cfg.MetricsAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", b.cfg.MetricsAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(b.out, "metrics server: %v\n", err)
		}
	}()
	fmt.Fprintf(b.out, "metrics        = http://%s/metrics\n", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func (b *bench) snapshot(ctx context.Context, col *byteslice.Column) error {
	var stores []blobstore.BlobStore
	if b.cfg.SnapshotDir != "" {
		stores = append(stores, blobstore.NewLocalStore(b.cfg.SnapshotDir))
	}
	if b.cfg.S3Bucket != "" {
		st, err := s3.New(ctx, b.cfg.S3Bucket, s3.WithPrefix(b.cfg.S3Prefix))
		if err != nil {
			return err
		}
		stores = append(stores, st)
	}

	name := fmt.Sprintf("%s-%d-%d", b.cfg.Type, b.cfg.Bits, b.cfg.Size)
	for _, st := range stores {
		d, err := byteslice.SaveSnapshot(ctx, st, name, col,
			byteslice.WithSnapshotCompression(b.cfg.Compression))
		if err != nil {
			return err
		}
		fmt.Fprintf(b.out, "snapshot       = %s (%d bytes, %s)\n", d.DataBlob(), d.Bytes, d.Compression)
	}
	return nil
}
