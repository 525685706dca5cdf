package byteslice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/byteslice/blobstore"
	"github.com/hupe1980/byteslice/codec"
	"github.com/hupe1980/byteslice/persistence"
)

const (
	snapshotFormatVersion = 1
	snapshotDataSuffix    = ".bsc"
	snapshotDescSuffix    = ".json"
)

// SnapshotDescriptor describes a column snapshot stored next to its data blob.
type SnapshotDescriptor struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	BitWidth    int       `json:"bit_width"`
	NumTuples   int       `json:"num_tuples"`
	Compression string    `json:"compression"`
	Bytes       int64     `json:"bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// DataBlob returns the name of the blob holding the column data.
func (d *SnapshotDescriptor) DataBlob() string {
	return d.Name + snapshotDataSuffix
}

func (d *SnapshotDescriptor) shape() (ColumnType, persistence.Compression, error) {
	if d.Version != snapshotFormatVersion {
		return 0, 0, fmt.Errorf("%w: snapshot version %d", ErrCorrupt, d.Version)
	}
	typ, err := ParseColumnType(d.Type)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := validateBitWidth(d.BitWidth); err != nil {
		return 0, 0, err
	}
	if d.NumTuples < 0 {
		return 0, 0, fmt.Errorf("%w: snapshot rows %d", ErrCorrupt, d.NumTuples)
	}
	comp, err := persistence.ParseCompression(d.Compression)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return typ, comp, nil
}

type snapshotOptions struct {
	compression persistence.Compression
	codec       codec.Codec
	columnOpts  []Option
}

// SnapshotOption configures SaveSnapshot and LoadSnapshot.
type SnapshotOption func(*snapshotOptions)

// WithSnapshotCompression sets the frame compression of the data blob.
// LoadSnapshot takes the compression from the descriptor instead.
func WithSnapshotCompression(c persistence.Compression) SnapshotOption {
	return func(o *snapshotOptions) { o.compression = c }
}

// WithSnapshotCodec sets the descriptor codec. Default: codec.Default.
func WithSnapshotCodec(c codec.Codec) SnapshotOption {
	return func(o *snapshotOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithColumnOptions passes options to the column built by LoadSnapshot.
func WithColumnOptions(opts ...Option) SnapshotOption {
	return func(o *snapshotOptions) { o.columnOpts = append(o.columnOpts, opts...) }
}

func newSnapshotOptions(optFns []SnapshotOption) snapshotOptions {
	o := snapshotOptions{
		compression: persistence.CompressionLZ4,
		codec:       codec.Default,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// SaveSnapshot writes col to store as <name>.bsc and then publishes the
// descriptor <name>.json. A reader that sees the descriptor always finds
// complete data.
func SaveSnapshot(ctx context.Context, store blobstore.BlobStore, name string, col *Column, optFns ...SnapshotOption) (*SnapshotDescriptor, error) {
	o := newSnapshotOptions(optFns)

	ctx, span := col.opts.tracer.Start(ctx, "byteslice.Column.Snapshot",
		trace.WithAttributes(
			attribute.String("op", "save"),
			attribute.String("name", name),
			attribute.String("compression", o.compression.String()),
		))
	defer span.End()

	desc, err := saveSnapshot(ctx, store, name, col, o)
	var n int64
	if desc != nil {
		n = desc.Bytes
	}
	endSpan(span, err)
	col.logger.LogSnapshot(ctx, "save", name, n, err)
	return desc, err
}

func saveSnapshot(ctx context.Context, store blobstore.BlobStore, name string, col *Column, o snapshotOptions) (*SnapshotDescriptor, error) {
	if col.closed {
		return nil, ErrClosed
	}

	desc := &SnapshotDescriptor{
		Version:     snapshotFormatVersion,
		Name:        name,
		Type:        col.typ.String(),
		BitWidth:    col.bitWidth,
		NumTuples:   col.num,
		Compression: o.compression.String(),
		CreatedAt:   time.Now().UTC(),
	}

	blob, err := store.Create(ctx, desc.DataBlob())
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", desc.DataBlob(), err)
	}

	w := persistence.NewSequentialWriter(append(col.persistenceOptions(ctx), persistence.WithCompression(o.compression))...)
	if err := w.OpenWriter(blob); err != nil {
		_ = blob.Close()
		_ = store.Delete(ctx, desc.DataBlob())
		return nil, err
	}
	n, err := col.writeStream(w)
	if err == nil {
		err = blob.Sync()
	}
	if cerr := blob.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = store.Delete(ctx, desc.DataBlob())
		return nil, fmt.Errorf("write %s: %w", desc.DataBlob(), err)
	}
	desc.Bytes = n

	data, err := o.codec.Marshal(desc)
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, name+snapshotDescSuffix, data); err != nil {
		return nil, fmt.Errorf("put %s%s: %w", name, snapshotDescSuffix, err)
	}
	return desc, nil
}

// ReadSnapshotDescriptor fetches and decodes the descriptor of name.
func ReadSnapshotDescriptor(ctx context.Context, store blobstore.BlobStore, name string, optFns ...SnapshotOption) (*SnapshotDescriptor, error) {
	o := newSnapshotOptions(optFns)
	return readDescriptor(ctx, store, name, o)
}

func readDescriptor(ctx context.Context, store blobstore.BlobStore, name string, o snapshotOptions) (*SnapshotDescriptor, error) {
	data, err := blobstore.ReadAll(ctx, store, name+snapshotDescSuffix)
	if err != nil {
		return nil, err
	}
	var desc SnapshotDescriptor
	if err := o.codec.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("%w: descriptor %s: %w", ErrCorrupt, name, err)
	}
	return &desc, nil
}

// LoadSnapshot rebuilds the column saved under name.
// A missing snapshot yields an error matching blobstore.ErrNotFound.
func LoadSnapshot(ctx context.Context, store blobstore.BlobStore, name string, optFns ...SnapshotOption) (*Column, *SnapshotDescriptor, error) {
	o := newSnapshotOptions(optFns)

	copts := defaultOptions()
	for _, fn := range o.columnOpts {
		fn(&copts)
	}

	ctx, span := copts.tracer.Start(ctx, "byteslice.Column.Snapshot",
		trace.WithAttributes(
			attribute.String("op", "load"),
			attribute.String("name", name),
		))
	defer span.End()

	col, desc, err := loadSnapshot(ctx, store, name, o)
	var n int64
	if desc != nil {
		n = desc.Bytes
	}
	endSpan(span, err)
	copts.logger.LogSnapshot(ctx, "load", name, n, err)
	return col, desc, err
}

func loadSnapshot(ctx context.Context, store blobstore.BlobStore, name string, o snapshotOptions) (*Column, *SnapshotDescriptor, error) {
	desc, err := readDescriptor(ctx, store, name, o)
	if err != nil {
		return nil, nil, err
	}
	typ, comp, err := desc.shape()
	if err != nil {
		return nil, desc, err
	}

	col, err := NewColumn(typ, desc.BitWidth, desc.NumTuples, o.columnOpts...)
	if err != nil {
		return nil, desc, err
	}

	rc, err := blobstore.OpenReader(ctx, store, desc.DataBlob())
	if err != nil {
		_ = col.Close()
		return nil, desc, fmt.Errorf("open %s: %w", desc.DataBlob(), err)
	}
	defer func() { _ = rc.Close() }()

	r := persistence.NewSequentialReader(append(col.persistenceOptions(ctx), persistence.WithCompression(comp))...)
	if err := r.OpenReader(rc); err != nil {
		_ = col.Close()
		return nil, desc, err
	}
	if _, err := col.readStream(r); err != nil {
		_ = col.Close()
		if errors.Is(err, persistence.ErrUnexpectedEnd) {
			err = fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return nil, desc, fmt.Errorf("read %s: %w", desc.DataBlob(), err)
	}
	return col, desc, nil
}

// DeleteSnapshot removes the descriptor first, then the data.
func DeleteSnapshot(ctx context.Context, store blobstore.BlobStore, name string) error {
	if err := store.Delete(ctx, name+snapshotDescSuffix); err != nil {
		return err
	}
	return store.Delete(ctx, name+snapshotDataSuffix)
}
