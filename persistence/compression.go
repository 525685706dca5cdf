package persistence

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the frame compression applied to a stream.
type Compression uint8

const (
	// CompressionNone writes raw bytes.
	CompressionNone Compression = iota
	// CompressionLZ4 wraps the stream in an LZ4 frame (fast, good for hot data).
	CompressionLZ4
	// CompressionZSTD wraps the stream in a zstd frame (better ratio, good for cold data).
	CompressionZSTD
)

// String returns the stable name of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as produced by String.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q", s)
	}
}

// zstd encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder(w io.Writer) (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		enc := v.(*zstd.Encoder)
		enc.Reset(w)
		return enc, nil
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func putZstdEncoder(enc *zstd.Encoder) {
	enc.Reset(nil)
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			return nil, err
		}
		return dec, nil
	}
	return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
}

func putZstdDecoder(dec *zstd.Decoder) {
	_ = dec.Reset(nil)
	zstdDecoderPool.Put(dec)
}

// frameWriter is a compressing writer that must be flushed and finalized.
type frameWriter interface {
	io.Writer
	Flush() error
	Close() error
}

func newFrameWriter(c Compression, w io.Writer) (frameWriter, error) {
	switch c {
	case CompressionNone:
		return nil, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZSTD:
		enc, err := getZstdEncoder(w)
		if err != nil {
			return nil, err
		}
		return &pooledZstdWriter{Encoder: enc}, nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

type pooledZstdWriter struct {
	*zstd.Encoder
}

func (p *pooledZstdWriter) Close() error {
	err := p.Encoder.Close()
	putZstdEncoder(p.Encoder)
	return err
}

// frameReader is a decompressing reader with an explicit release.
type frameReader interface {
	io.Reader
	release()
}

func newFrameReader(c Compression, r io.Reader) (frameReader, error) {
	switch c {
	case CompressionNone:
		return nil, nil
	case CompressionLZ4:
		return lz4Reader{lz4.NewReader(r)}, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder(r)
		if err != nil {
			return nil, err
		}
		return zstdReader{dec}, nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

type lz4Reader struct{ *lz4.Reader }

func (lz4Reader) release() {}

type zstdReader struct{ *zstd.Decoder }

func (z zstdReader) release() { putZstdDecoder(z.Decoder) }
