package persistence

import (
	"context"

	"github.com/hupe1980/byteslice/internal/fs"
	"github.com/hupe1980/byteslice/internal/resource"
)

const defaultBufferSize = 256 << 10

type options struct {
	fs          fs.FileSystem
	compression Compression
	controller  *resource.Controller
	ctx         context.Context
	bufferSize  int
	sync        bool
}

func defaultOptions() options {
	return options{
		fs:         fs.Default,
		ctx:        context.Background(),
		bufferSize: defaultBufferSize,
		sync:       true,
	}
}

// Option configures a SequentialWriter or SequentialReader.
type Option func(*options)

// WithFileSystem sets the filesystem used by Open. Defaults to fs.Default.
func WithFileSystem(f fs.FileSystem) Option {
	return func(o *options) {
		if f != nil {
			o.fs = f
		}
	}
}

// WithCompression wraps the stream in a compressed frame.
// Readers must be configured with the same compression as the writer.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithRateLimit throttles the underlying IO through the controller's limiter.
func WithRateLimit(ctx context.Context, c *resource.Controller) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
		o.controller = c
	}
}

// WithBufferSize sets the size of the write/read buffer.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithSync controls whether Close fsyncs files opened by path. Defaults to true.
func WithSync(enabled bool) Option {
	return func(o *options) {
		o.sync = enabled
	}
}
