package persistence

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/byteslice/internal/fs"
	"github.com/hupe1980/byteslice/internal/resource"
)

var (
	// ErrNotOpen is returned when a file operation runs before Open or after Close.
	ErrNotOpen = errors.New("persistence: file not open")

	// ErrAlreadyOpen is returned when Open is called on an open file.
	ErrAlreadyOpen = errors.New("persistence: file already open")

	// ErrUnexpectedEnd is returned when a read runs past the end of the stream.
	ErrUnexpectedEnd = errors.New("persistence: unexpected end of stream")
)

// SequentialWriter is an append-only binary writer.
type SequentialWriter struct {
	opts options

	file  fs.File
	frame frameWriter
	buf   *bufio.Writer
	n     int64
}

// NewSequentialWriter creates a closed writer. Call Open or OpenWriter before Append.
func NewSequentialWriter(optFns ...Option) *SequentialWriter {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SequentialWriter{opts: opts}
}

// Open creates (or truncates) the file at path.
func (w *SequentialWriter) Open(path string) error {
	if w.buf != nil {
		return ErrAlreadyOpen
	}
	f, err := w.opts.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("persistence: open %s: %w", path, err)
	}
	if err := w.attach(f); err != nil {
		_ = f.Close()
		return err
	}
	w.file = f
	return nil
}

// OpenWriter attaches the writer to dst. Close finalizes the stream but does
// not close dst.
func (w *SequentialWriter) OpenWriter(dst io.Writer) error {
	if w.buf != nil {
		return ErrAlreadyOpen
	}
	return w.attach(dst)
}

func (w *SequentialWriter) attach(dst io.Writer) error {
	if w.opts.controller != nil {
		dst = resource.NewRateLimitedWriter(w.opts.ctx, dst, w.opts.controller)
	}
	frame, err := newFrameWriter(w.opts.compression, dst)
	if err != nil {
		return err
	}
	w.frame = frame
	if frame != nil {
		dst = frame
	}
	w.buf = bufio.NewWriterSize(dst, w.opts.bufferSize)
	w.n = 0
	return nil
}

// Append writes p to the stream.
func (w *SequentialWriter) Append(p []byte) error {
	if w.buf == nil {
		return ErrNotOpen
	}
	n, err := w.buf.Write(p)
	w.n += int64(n)
	return err
}

// AppendUint64 writes v as 8 little-endian bytes.
func (w *SequentialWriter) AppendUint64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return w.Append(b[:])
}

// AppendUint16s writes the raw little-endian bytes of s.
func (w *SequentialWriter) AppendUint16s(s []uint16) error {
	if len(s) == 0 {
		return nil
	}
	if isLittleEndian {
		return w.Append(uint16Bytes(s))
	}
	b := make([]byte, 2*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint16(b[2*i:], v)
	}
	return w.Append(b)
}

// AppendUint32s writes the raw little-endian bytes of s.
func (w *SequentialWriter) AppendUint32s(s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	if isLittleEndian {
		return w.Append(uint32Bytes(s))
	}
	b := make([]byte, 4*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return w.Append(b)
}

// Flush pushes buffered bytes through the compressor to the destination.
func (w *SequentialWriter) Flush() error {
	if w.buf == nil {
		return ErrNotOpen
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if w.frame != nil {
		return w.frame.Flush()
	}
	return nil
}

// BytesWritten returns the number of logical bytes appended since Open.
func (w *SequentialWriter) BytesWritten() int64 {
	return w.n
}

// Close flushes, finalizes the compressed frame and closes a file opened by path.
func (w *SequentialWriter) Close() error {
	if w.buf == nil {
		return ErrNotOpen
	}

	err := w.buf.Flush()
	if w.frame != nil {
		err = errors.Join(err, w.frame.Close())
	}
	if w.file != nil {
		if w.opts.sync && err == nil {
			err = w.file.Sync()
		}
		err = errors.Join(err, w.file.Close())
	}

	w.buf = nil
	w.frame = nil
	w.file = nil
	return err
}

// SequentialReader reads a stream produced by SequentialWriter.
type SequentialReader struct {
	opts options

	file  fs.File
	frame frameReader
	buf   *bufio.Reader
	n     int64
}

// NewSequentialReader creates a closed reader. Call Open or OpenReader before Read.
func NewSequentialReader(optFns ...Option) *SequentialReader {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SequentialReader{opts: opts}
}

// Open opens the file at path for reading.
func (r *SequentialReader) Open(path string) error {
	if r.buf != nil {
		return ErrAlreadyOpen
	}
	f, err := r.opts.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("persistence: open %s: %w", path, err)
	}
	if err := r.attach(f); err != nil {
		_ = f.Close()
		return err
	}
	r.file = f
	return nil
}

// OpenReader attaches the reader to src. Close does not close src.
func (r *SequentialReader) OpenReader(src io.Reader) error {
	if r.buf != nil {
		return ErrAlreadyOpen
	}
	return r.attach(src)
}

func (r *SequentialReader) attach(src io.Reader) error {
	if r.opts.controller != nil {
		src = resource.NewRateLimitedReader(r.opts.ctx, src, r.opts.controller)
	}
	frame, err := newFrameReader(r.opts.compression, src)
	if err != nil {
		return err
	}
	r.frame = frame
	if frame != nil {
		src = frame
	}
	r.buf = bufio.NewReaderSize(src, r.opts.bufferSize)
	r.n = 0
	return nil
}

// Read fills p completely. A stream that ends early yields ErrUnexpectedEnd.
func (r *SequentialReader) Read(p []byte) error {
	if r.buf == nil {
		return ErrNotOpen
	}
	n, err := io.ReadFull(r.buf, p)
	r.n += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: read %d of %d bytes", ErrUnexpectedEnd, n, len(p))
		}
		return err
	}
	return nil
}

// ReadUint64 reads 8 little-endian bytes.
func (r *SequentialReader) ReadUint64() (uint64, error) {
	var b [8]byte
	if err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// ReadUint16s fills dst from raw little-endian bytes.
func (r *SequentialReader) ReadUint16s(dst []uint16) error {
	if len(dst) == 0 {
		return nil
	}
	if isLittleEndian {
		return r.Read(uint16Bytes(dst))
	}
	b := make([]byte, 2*len(dst))
	if err := r.Read(b); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return nil
}

// ReadUint32s fills dst from raw little-endian bytes.
func (r *SequentialReader) ReadUint32s(dst []uint32) error {
	if len(dst) == 0 {
		return nil
	}
	if isLittleEndian {
		return r.Read(uint32Bytes(dst))
	}
	b := make([]byte, 4*len(dst))
	if err := r.Read(b); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return nil
}

// IsEnd reports whether the stream has no more bytes. A closed reader is at its end.
func (r *SequentialReader) IsEnd() bool {
	if r.buf == nil {
		return true
	}
	_, err := r.buf.Peek(1)
	return err != nil
}

// BytesRead returns the number of logical bytes read since Open.
func (r *SequentialReader) BytesRead() int64 {
	return r.n
}

// Close releases the decompressor and closes a file opened by path.
func (r *SequentialReader) Close() error {
	if r.buf == nil {
		return ErrNotOpen
	}
	if r.frame != nil {
		r.frame.release()
	}
	var err error
	if r.file != nil {
		err = r.file.Close()
	}
	r.buf = nil
	r.frame = nil
	r.file = nil
	return err
}
