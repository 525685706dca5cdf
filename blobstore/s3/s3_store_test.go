package s3_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hupe1980/byteslice"
	"github.com/hupe1980/byteslice/blobstore"
	"github.com/hupe1980/byteslice/blobstore/s3"
	"github.com/hupe1980/byteslice/persistence"
	"github.com/hupe1980/byteslice/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIntegrationStore connects to S3_BUCKET (optionally S3_ENDPOINT for
// MinIO or LocalStack) under a fresh prefix.
func newIntegrationStore(t *testing.T) *s3.Store {
	t.Helper()
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	opts := []s3.Option{s3.WithPrefix(fmt.Sprintf("test-byteslice-%d", time.Now().UnixNano()))}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		opts = append(opts, s3.WithEndpoint(endpoint, true))
	}

	store, err := s3.New(context.Background(), bucket, opts...)
	require.NoError(t, err)
	return store
}

func TestIntegration_S3Store(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	t.Run("StreamAndReadAt", func(t *testing.T) {
		// one full byte plane
		plane := make([]byte, byteslice.NumTuplesPerBlock)
		for i := range plane {
			plane[i] = byte(i) ^ 0x80
		}

		w, err := store.Create(ctx, "plane.bin")
		require.NoError(t, err)
		_, err = w.Write(plane)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := store.Open(ctx, "plane.bin")
		require.NoError(t, err)
		defer r.Close()
		assert.Equal(t, int64(len(plane)), r.Size())

		buf := make([]byte, 64)
		n, err := r.ReadAt(ctx, buf, 4096)
		require.NoError(t, err)
		assert.Equal(t, 64, n)
		assert.Equal(t, plane[4096:4160], buf)

		names, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, names, "plane.bin")
		require.NoError(t, store.Delete(ctx, "plane.bin"))
	})

	t.Run("PutIfNotExists", func(t *testing.T) {
		require.NoError(t, store.PutIfNotExists(ctx, "once.json", []byte(`{}`)))
		assert.ErrorIs(t, store.PutIfNotExists(ctx, "once.json", []byte(`{}`)), s3.ErrConflict)
		require.NoError(t, store.Delete(ctx, "once.json"))
	})

	t.Run("Snapshot", func(t *testing.T) {
		const rows = 1_200_000
		codes := testutil.NewRNG(9).Codes(rows, 13)

		col, err := byteslice.NewColumn(byteslice.TypeByteSlicePadRight, 13, rows)
		require.NoError(t, err)
		defer col.Close()
		require.NoError(t, col.BulkLoadArray(codes, 0))

		_, err = byteslice.SaveSnapshot(ctx, store, "orders", col,
			byteslice.WithSnapshotCompression(persistence.CompressionZSTD))
		require.NoError(t, err)
		defer func() { _ = byteslice.DeleteSnapshot(ctx, store, "orders") }()

		loaded, desc, err := byteslice.LoadSnapshot(ctx, store, "orders")
		require.NoError(t, err)
		defer loaded.Close()
		assert.Equal(t, rows, desc.NumTuples)

		for _, id := range []int{0, 1, rows / 2, rows - 1} {
			v, err := loaded.GetTuple(id)
			require.NoError(t, err)
			assert.Equal(t, codes[id], v)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
