package byteslice

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Column is a sequence of equally typed blocks holding fixed-width codes.
//
// Scans are safe to run concurrently with each other. Resize, SetTuple,
// BulkLoadArray, Deserialize and Close must not run concurrently with any
// other operation on the same Column.
type Column struct {
	typ      ColumnType
	bitWidth int
	num      int
	blocks   []ColumnBlock

	opts    options
	logger  *Logger
	charged int64
	closed  bool
}

// NewColumn creates a column of num zero rows.
func NewColumn(typ ColumnType, bitWidth, num int, optFns ...Option) (*Column, error) {
	if !typ.valid() {
		return nil, &ErrUnsupportedColumnType{Type: typ}
	}
	if err := validateBitWidth(bitWidth); err != nil {
		return nil, err
	}
	if num < 0 {
		return nil, fmt.Errorf("%w: column size %d", ErrOutOfRange, num)
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Column{
		typ:      typ,
		bitWidth: bitWidth,
		opts:     opts,
		logger:   opts.logger.WithColumn(typ, bitWidth),
	}
	if err := c.Resize(num); err != nil {
		c.releaseAll()
		return nil, err
	}
	return c, nil
}

// Type returns the storage encoding.
func (c *Column) Type() ColumnType { return c.typ }

// BitWidth returns the code width.
func (c *Column) BitWidth() int { return c.bitWidth }

// NumTuples returns the number of rows.
func (c *Column) NumTuples() int { return c.num }

// NumBlocks returns the number of blocks.
func (c *Column) NumBlocks() int { return len(c.blocks) }

// Block returns block i.
func (c *Column) Block(i int) ColumnBlock { return c.blocks[i] }

// MemSize returns the bytes held by all blocks.
func (c *Column) MemSize() int64 { return c.charged }

func (c *Column) newBlock(num int) (ColumnBlock, error) {
	size := blockMemSize(c.typ, c.bitWidth)
	if err := c.opts.controller.AcquireMemory(size); err != nil {
		return nil, fmt.Errorf("allocate %s block: %w", c.typ, err)
	}
	blk, err := newColumnBlock(c.typ, c.bitWidth, num)
	if err != nil {
		c.opts.controller.ReleaseMemory(size)
		return nil, err
	}
	c.charged += size
	return blk, nil
}

func (c *Column) releaseBlock(blk ColumnBlock) {
	size := blk.MemSize()
	c.opts.controller.ReleaseMemory(size)
	c.charged -= size
}

func (c *Column) releaseAll() {
	for _, blk := range c.blocks {
		c.releaseBlock(blk)
	}
	clear(c.blocks)
	c.blocks = nil
}

func (c *Column) locate(id int) (ColumnBlock, int) {
	return c.blocks[id/NumTuplesPerBlock], id % NumTuplesPerBlock
}

// GetTuple returns the code at row id.
func (c *Column) GetTuple(id int) (uint64, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if id < 0 || id >= c.num {
		return 0, fmt.Errorf("%w: row %d of %d", ErrOutOfRange, id, c.num)
	}
	blk, pos := c.locate(id)
	return blk.GetTuple(pos), nil
}

// SetTuple stores value at row id. Values wider than the code width are rejected.
func (c *Column) SetTuple(id int, value uint64) error {
	if c.closed {
		return ErrClosed
	}
	if id < 0 || id >= c.num {
		return fmt.Errorf("%w: row %d of %d", ErrOutOfRange, id, c.num)
	}
	if err := c.checkCode(value); err != nil {
		return err
	}
	blk, pos := c.locate(id)
	blk.SetTuple(pos, value)
	return nil
}

func (c *Column) checkCode(value uint64) error {
	if value > codeMask(c.bitWidth) {
		return fmt.Errorf("%w: code %d exceeds %d bits", ErrOutOfRange, value, c.bitWidth)
	}
	return nil
}

// BulkLoadArray stores codes at consecutive rows starting at id.
func (c *Column) BulkLoadArray(codes []uint64, id int) error {
	start := time.Now()
	err := c.bulkLoad(codes, id)
	c.opts.metricsCollector.RecordLoad(len(codes), time.Since(start), err)
	c.logger.LogLoad(context.Background(), "array", len(codes), err)
	return err
}

func (c *Column) bulkLoad(codes []uint64, id int) error {
	if c.closed {
		return ErrClosed
	}
	if id < 0 || id+len(codes) > c.num {
		return fmt.Errorf("%w: rows [%d, %d) of %d", ErrOutOfRange, id, id+len(codes), c.num)
	}
	for _, v := range codes {
		if err := c.checkCode(v); err != nil {
			return err
		}
	}

	blockID, pos := id/NumTuplesPerBlock, id%NumTuplesPerBlock
	for len(codes) > 0 {
		blk := c.blocks[blockID]
		n := min(blk.NumTuples()-pos, len(codes))
		if err := blk.BulkLoadArray(codes[:n], pos); err != nil {
			return fmt.Errorf("block %d: %w", blockID, err)
		}
		codes = codes[n:]
		pos = 0
		blockID++
	}
	return nil
}

// Resize changes the number of rows. Growing exposes zero rows; shrinking
// discards rows at and beyond num. On error the column is unchanged.
func (c *Column) Resize(num int) error {
	ctx, span := c.opts.tracer.Start(context.Background(), "byteslice.Column.Resize",
		trace.WithAttributes(attribute.Int("from", c.num), attribute.Int("to", num)))
	defer span.End()

	from := c.num
	err := c.resize(num)
	endSpan(span, err)
	c.opts.metricsCollector.RecordResize(from, num, err)
	c.logger.LogResize(ctx, from, num, err)
	return err
}

func (c *Column) resize(num int) error {
	if c.closed {
		return ErrClosed
	}
	if num < 0 {
		return fmt.Errorf("%w: column size %d", ErrOutOfRange, num)
	}

	newCount := numBlocksFor(num)
	oldCount := len(c.blocks)

	switch {
	case newCount > oldCount:
		added := make([]ColumnBlock, 0, newCount-oldCount)
		for range newCount - oldCount {
			blk, err := c.newBlock(NumTuplesPerBlock)
			if err != nil {
				for _, b := range added {
					c.releaseBlock(b)
				}
				return err
			}
			added = append(added, blk)
		}
		if oldCount > 0 {
			if err := c.blocks[oldCount-1].Resize(NumTuplesPerBlock); err != nil {
				return err
			}
		}
		c.blocks = append(c.blocks, added...)
	case newCount < oldCount:
		for _, blk := range c.blocks[newCount:] {
			c.releaseBlock(blk)
		}
		clear(c.blocks[newCount:])
		c.blocks = c.blocks[:newCount]
	}

	if newCount > 0 {
		if err := c.blocks[newCount-1].Resize(num - (newCount-1)*NumTuplesPerBlock); err != nil {
			return err
		}
	}
	c.num = num
	return nil
}

// Scan evaluates row <cmp> literal for every row and merges the result into
// bv according to opt. bv must be partitioned like the column.
func (c *Column) Scan(cmp Comparator, literal uint64, bv *BitVector, opt Bitwise) error {
	return c.ScanContext(context.Background(), cmp, literal, bv, opt)
}

// ScanContext is Scan with ctx as the parent of the emitted span. The scan
// itself is not cancellable.
func (c *Column) ScanContext(ctx context.Context, cmp Comparator, literal uint64, bv *BitVector, opt Bitwise) error {
	ctx, span := c.opts.tracer.Start(ctx, "byteslice.Column.Scan",
		trace.WithAttributes(
			attribute.String("comparator", cmp.String()),
			attribute.String("bitwise", opt.String()),
			attribute.String("literal", strconv.FormatUint(literal, 10)),
			attribute.Int("rows", c.num),
		))
	defer span.End()

	start := time.Now()
	err := c.checkScan(cmp, opt, bv)
	if err == nil {
		err = c.forEachBlock(ctx, func(i int) error {
			return c.blocks[i].Scan(cmp, literal, bv.blocks[i], opt)
		})
	}
	c.finishScan(ctx, span, cmp, opt, start, err)
	return err
}

// ScanColumn evaluates row <cmp> other's row for every row. other must share
// the column's type, width and row count.
func (c *Column) ScanColumn(cmp Comparator, other *Column, bv *BitVector, opt Bitwise) error {
	ctx, span := c.opts.tracer.Start(context.Background(), "byteslice.Column.Scan",
		trace.WithAttributes(
			attribute.String("comparator", cmp.String()),
			attribute.String("bitwise", opt.String()),
			attribute.Bool("column_operand", true),
			attribute.Int("rows", c.num),
		))
	defer span.End()

	start := time.Now()
	err := c.checkScan(cmp, opt, bv)
	if err == nil {
		err = c.checkOperand(other)
	}
	if err == nil {
		err = c.forEachBlock(ctx, func(i int) error {
			return c.blocks[i].ScanBlock(cmp, other.blocks[i], bv.blocks[i], opt)
		})
	}
	c.finishScan(ctx, span, cmp, opt, start, err)
	return err
}

func (c *Column) checkScan(cmp Comparator, opt Bitwise, bv *BitVector) error {
	if c.closed {
		return ErrClosed
	}
	if err := validateScanArgs(cmp, opt); err != nil {
		return err
	}
	return bv.matches(c)
}

func (c *Column) checkOperand(other *Column) error {
	if other.closed {
		return ErrClosed
	}
	if other.typ != c.typ || other.bitWidth != c.bitWidth {
		return &ErrTypeMismatch{
			ExpectedType:  c.typ,
			ActualType:    other.typ,
			ExpectedWidth: c.bitWidth,
			ActualWidth:   other.bitWidth,
		}
	}
	if other.num != c.num {
		return &ErrSizeMismatch{What: "column", Expected: c.num, Actual: other.num}
	}
	return nil
}

func (c *Column) finishScan(ctx context.Context, span trace.Span, cmp Comparator, opt Bitwise, start time.Time, err error) {
	endSpan(span, err)
	c.opts.metricsCollector.RecordScan(c.num, time.Since(start), err)
	c.logger.LogScan(ctx, cmp, opt, c.num, err)
}

// forEachBlock runs fn once per block. Blocks are disjoint, so the calls
// run in parallel up to the configured parallelism, each holding a worker
// slot of the resource controller.
func (c *Column) forEachBlock(ctx context.Context, fn func(i int) error) error {
	switch len(c.blocks) {
	case 0:
		return nil
	case 1:
		return c.runBlock(ctx, 0, fn)
	}

	var g errgroup.Group
	g.SetLimit(c.opts.parallelism)
	wctx := context.WithoutCancel(ctx)
	for i := range c.blocks {
		g.Go(func() error {
			return c.runBlock(wctx, i, fn)
		})
	}
	return g.Wait()
}

func (c *Column) runBlock(ctx context.Context, i int, fn func(i int) error) error {
	ctrl := c.opts.controller
	if err := ctrl.AcquireWorker(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	defer ctrl.ReleaseWorker()
	if err := fn(i); err != nil {
		return fmt.Errorf("block %d: %w", i, err)
	}
	return nil
}

// Close releases all blocks and returns their memory to the resource
// controller. Closing twice is a no-op.
func (c *Column) Close() error {
	if c.closed {
		return nil
	}
	c.releaseAll()
	c.num = 0
	c.closed = true
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
