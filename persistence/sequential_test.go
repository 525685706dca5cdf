package persistence

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/hupe1980/byteslice/internal/fs"
	"github.com/hupe1980/byteslice/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i*7 + i/251)
	}
	return p
}

func TestSequentialFileRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "blocks.bin")
			data := payload(3 << 20)
			words16 := []uint16{1, 0xfffe, 0x1234}
			words32 := []uint32{7, 0xdeadbeef}

			w := NewSequentialWriter(WithCompression(c))
			require.NoError(t, w.Open(path))
			require.NoError(t, w.AppendUint64(1500000))
			require.NoError(t, w.Append(data))
			require.NoError(t, w.AppendUint16s(words16))
			require.NoError(t, w.AppendUint32s(words32))
			require.NoError(t, w.Flush())
			assert.Equal(t, int64(8+len(data)+6+8), w.BytesWritten())
			require.NoError(t, w.Close())

			r := NewSequentialReader(WithCompression(c))
			require.NoError(t, r.Open(path))
			assert.False(t, r.IsEnd())

			num, err := r.ReadUint64()
			require.NoError(t, err)
			assert.Equal(t, uint64(1500000), num)

			got := make([]byte, len(data))
			require.NoError(t, r.Read(got))
			assert.True(t, bytes.Equal(data, got))

			got16 := make([]uint16, 3)
			require.NoError(t, r.ReadUint16s(got16))
			assert.Equal(t, words16, got16)

			got32 := make([]uint32, 2)
			require.NoError(t, r.ReadUint32s(got32))
			assert.Equal(t, words32, got32)

			assert.True(t, r.IsEnd())
			assert.ErrorIs(t, r.Read(make([]byte, 1)), ErrUnexpectedEnd)
			require.NoError(t, r.Close())
		})
	}
}

func TestSequentialStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 64 << 20})

	w := NewSequentialWriter(WithCompression(CompressionZSTD), WithRateLimit(t.Context(), rc))
	require.NoError(t, w.OpenWriter(&buf))
	require.NoError(t, w.Append([]byte("abc")))
	require.NoError(t, w.Close())

	r := NewSequentialReader(WithCompression(CompressionZSTD), WithRateLimit(t.Context(), rc))
	require.NoError(t, r.OpenReader(bytes.NewReader(buf.Bytes())))
	got := make([]byte, 3)
	require.NoError(t, r.Read(got))
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, int64(3), r.BytesRead())
	assert.True(t, r.IsEnd())
	require.NoError(t, r.Close())
}

func TestSequentialNotOpen(t *testing.T) {
	w := NewSequentialWriter()
	assert.ErrorIs(t, w.Append([]byte{1}), ErrNotOpen)
	assert.ErrorIs(t, w.Flush(), ErrNotOpen)
	assert.ErrorIs(t, w.Close(), ErrNotOpen)

	r := NewSequentialReader()
	assert.ErrorIs(t, r.Read(make([]byte, 1)), ErrNotOpen)
	assert.True(t, r.IsEnd())
	assert.ErrorIs(t, r.Close(), ErrNotOpen)

	var buf bytes.Buffer
	require.NoError(t, w.OpenWriter(&buf))
	assert.ErrorIs(t, w.OpenWriter(&buf), ErrAlreadyOpen)
	require.NoError(t, w.Close())
}

func TestSequentialOpenMissingFile(t *testing.T) {
	r := NewSequentialReader()
	err := r.Open(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}

func TestSequentialWriterFault(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("broken", fs.Fault{FailAfterBytes: 1024, FailAfterReadBytes: -1})

	w := NewSequentialWriter(WithFileSystem(ffs), WithBufferSize(512))
	require.NoError(t, w.Open(filepath.Join(t.TempDir(), "broken.bin")))

	err := w.Append(payload(4096))
	if err == nil {
		err = w.Close()
	} else {
		_ = w.Close()
	}
	assert.ErrorIs(t, err, fs.ErrInjected)
}

func TestSequentialReaderFault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	w := NewSequentialWriter()
	require.NoError(t, w.Open(path))
	require.NoError(t, w.Append(payload(8192)))
	require.NoError(t, w.Close())

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("short", fs.Fault{FailAfterBytes: -1, FailAfterReadBytes: 0})

	r := NewSequentialReader(WithFileSystem(ffs))
	require.NoError(t, r.Open(path))
	assert.ErrorIs(t, r.Read(make([]byte, 16)), fs.ErrInjected)
	require.NoError(t, r.Close())
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("brotli")
	assert.Error(t, err)
}
