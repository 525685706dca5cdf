package byteslice

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/byteslice/persistence"
)

// Serialize appends every block to w in order. The stream carries no
// header; a reader must know the column's type, width and row count.
func (c *Column) Serialize(w *persistence.SequentialWriter) error {
	if c.closed {
		return ErrClosed
	}
	for i, blk := range c.blocks {
		if err := blk.Serialize(w); err != nil {
			return fmt.Errorf("serialize block %d: %w", i, err)
		}
	}
	return nil
}

// Deserialize replaces every block from r. The column must already have the
// shape the stream was written with.
func (c *Column) Deserialize(r *persistence.SequentialReader) error {
	if c.closed {
		return ErrClosed
	}
	for i, blk := range c.blocks {
		want := blk.NumTuples()
		if err := blk.Deserialize(r); err != nil {
			return fmt.Errorf("deserialize block %d: %w", i, err)
		}
		if got := blk.NumTuples(); got != want {
			_ = blk.Resize(want)
			return fmt.Errorf("%w: block %d holds %d rows, column expects %d", ErrCorrupt, i, got, want)
		}
	}
	return nil
}

// WriteTo implements io.WriterTo with an uncompressed stream.
func (c *Column) WriteTo(dst io.Writer) (int64, error) {
	w := persistence.NewSequentialWriter(c.persistenceOptions(context.Background())...)
	if err := w.OpenWriter(dst); err != nil {
		return 0, err
	}
	return c.writeStream(w)
}

// ReadFrom implements io.ReaderFrom for a stream produced by WriteTo.
func (c *Column) ReadFrom(src io.Reader) (int64, error) {
	r := persistence.NewSequentialReader(c.persistenceOptions(context.Background())...)
	if err := r.OpenReader(src); err != nil {
		return 0, err
	}
	return c.readStream(r)
}

// SerializeToFile writes the column to path.
func (c *Column) SerializeToFile(path string, opts ...persistence.Option) error {
	w := persistence.NewSequentialWriter(append(c.persistenceOptions(context.Background()), opts...)...)
	if err := w.Open(path); err != nil {
		return err
	}
	_, err := c.writeStream(w)
	return err
}

// DeserializeFromFile reads the column from path.
func (c *Column) DeserializeFromFile(path string, opts ...persistence.Option) error {
	r := persistence.NewSequentialReader(append(c.persistenceOptions(context.Background()), opts...)...)
	if err := r.Open(path); err != nil {
		return err
	}
	_, err := c.readStream(r)
	return err
}

// SaveColumnFile writes col to path.
func SaveColumnFile(path string, col *Column, opts ...persistence.Option) error {
	return col.SerializeToFile(path, opts...)
}

// LoadColumnFile creates a column of the given shape and fills it from path.
func LoadColumnFile(path string, typ ColumnType, bitWidth, num int, opts ...persistence.Option) (*Column, error) {
	col, err := NewColumn(typ, bitWidth, num)
	if err != nil {
		return nil, err
	}
	if err := col.DeserializeFromFile(path, opts...); err != nil {
		_ = col.Close()
		return nil, err
	}
	return col, nil
}

// writeStream serializes into w and closes it.
func (c *Column) writeStream(w *persistence.SequentialWriter) (int64, error) {
	start := time.Now()
	err := c.Serialize(w)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	n := w.BytesWritten()
	c.opts.metricsCollector.RecordSerialize(n, true, time.Since(start), err)
	return n, err
}

// readStream deserializes from r and closes it.
func (c *Column) readStream(r *persistence.SequentialReader) (int64, error) {
	start := time.Now()
	err := c.Deserialize(r)
	n := r.BytesRead()
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	c.opts.metricsCollector.RecordSerialize(n, false, time.Since(start), err)
	c.opts.metricsCollector.RecordLoad(c.num, time.Since(start), err)
	c.logger.LogLoad(context.Background(), "stream", c.num, err)
	return n, err
}

// persistenceOptions routes column IO through the resource controller's limiter.
func (c *Column) persistenceOptions(ctx context.Context) []persistence.Option {
	if c.opts.controller == nil {
		return nil
	}
	return []persistence.Option{persistence.WithRateLimit(ctx, c.opts.controller)}
}
