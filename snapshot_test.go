package byteslice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/hupe1980/byteslice/blobstore"
	"github.com/hupe1980/byteslice/codec"
	"github.com/hupe1980/byteslice/persistence"
	"github.com/hupe1980/byteslice/testutil"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(31)
	num := NumTuplesPerBlock + 100
	codes := rng.Codes(num, 13)

	stores := map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			src := newTestColumn(t, TypeByteSlicePadLeft, 13, num)
			require.NoError(t, src.BulkLoadArray(codes, 0))

			desc, err := SaveSnapshot(ctx, store, "orders", src, WithSnapshotCompression(persistence.CompressionZSTD))
			require.NoError(t, err)
			assert.Equal(t, "orders", desc.Name)
			assert.Equal(t, "byteslice-pad-left", desc.Type)
			assert.Equal(t, 13, desc.BitWidth)
			assert.Equal(t, num, desc.NumTuples)
			assert.Equal(t, "zstd", desc.Compression)
			assert.Equal(t, int64(2*(8+2*NumTuplesPerBlock)), desc.Bytes)
			assert.False(t, desc.CreatedAt.IsZero())

			names, err := store.List(ctx, "orders")
			require.NoError(t, err)
			assert.Equal(t, []string{"orders.bsc", "orders.json"}, names)

			got, loaded, err := LoadSnapshot(ctx, store, "orders")
			require.NoError(t, err)
			defer got.Close()
			assert.Equal(t, desc.Bytes, loaded.Bytes)
			assert.Equal(t, TypeByteSlicePadLeft, got.Type())
			requireSameCodes(t, src, got)

			require.NoError(t, DeleteSnapshot(ctx, store, "orders"))
			_, _, err = LoadSnapshot(ctx, store, "orders")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}

func TestSnapshot_Descriptor(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	col := newTestColumn(t, TypeNaive, 5, 3)
	require.NoError(t, col.BulkLoadArray([]uint64{1, 2, 31}, 0))

	_, err := SaveSnapshot(ctx, store, "tiny", col, WithSnapshotCodec(codec.JSON{}))
	require.NoError(t, err)

	raw, err := blobstore.ReadAll(ctx, store, "tiny.json")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"bit_width":5`)
	assert.Contains(t, string(raw), `"compression":"lz4"`)

	desc, err := ReadSnapshotDescriptor(ctx, store, "tiny")
	require.NoError(t, err)
	assert.Equal(t, "naive", desc.Type)
	assert.Equal(t, "tiny.bsc", desc.DataBlob())

	got, _, err := LoadSnapshot(ctx, store, "tiny")
	require.NoError(t, err)
	v, err := got.GetTuple(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(31), v)
}

func TestSnapshot_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	require.NoError(t, store.Put(ctx, "bad.json", []byte("{not json")))
	_, _, err := LoadSnapshot(ctx, store, "bad")
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, store.Put(ctx, "ver.json", []byte(`{"version":9,"name":"ver","type":"naive","bit_width":8,"num_tuples":1,"compression":"none"}`)))
	_, _, err = LoadSnapshot(ctx, store, "ver")
	assert.ErrorIs(t, err, ErrCorrupt)

	var widthErr *ErrInvalidBitWidth
	require.NoError(t, store.Put(ctx, "wide.json", []byte(`{"version":1,"name":"wide","type":"naive","bit_width":40,"num_tuples":1,"compression":"none"}`)))
	_, _, err = LoadSnapshot(ctx, store, "wide")
	assert.ErrorAs(t, err, &widthErr)

	// descriptor without data
	require.NoError(t, store.Put(ctx, "lost.json", []byte(`{"version":1,"name":"lost","type":"naive","bit_width":8,"num_tuples":1,"compression":"none"}`)))
	_, _, err = LoadSnapshot(ctx, store, "lost")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	// truncated data
	col := newTestColumn(t, TypeByteSlicePadRight, 8, 100)
	_, err = SaveSnapshot(ctx, store, "cut", col, WithSnapshotCompression(persistence.CompressionNone))
	require.NoError(t, err)
	data, err := blobstore.ReadAll(ctx, store, "cut.bsc")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "cut.bsc", data[:len(data)/2]))
	_, _, err = LoadSnapshot(ctx, store, "cut")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSnapshot_ClosedColumn(t *testing.T) {
	col, err := NewColumn(TypeNaive, 8, 1)
	require.NoError(t, err)
	require.NoError(t, col.Close())

	store := blobstore.NewMemoryStore()
	_, err = SaveSnapshot(context.Background(), store, "x", col)
	assert.ErrorIs(t, err, ErrClosed)

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSnapshot_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exporter))
	tracer := tp.Tracer("test")

	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	col := newTestColumn(t, TypeByteSlicePadRight, 8, 10, WithTracer(tracer))

	_, err := SaveSnapshot(ctx, store, "traced", col)
	require.NoError(t, err)
	got, _, err := LoadSnapshot(ctx, store, "traced", WithColumnOptions(WithTracer(tracer)))
	require.NoError(t, err)
	defer got.Close()

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "byteslice.Column.Snapshot")
	assert.Contains(t, names, "byteslice.Column.Resize")
}
