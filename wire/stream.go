package wire

import "time"

// Writer is a growable buffer that message builders append encodings to.
// The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with room for capacity bytes.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the bytes written so far. The slice aliases the buffer until
// the next write or Reset.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// Reset discards the contents but keeps the allocated capacity.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// PutUint8 writes v.
func (w *Writer) PutUint8(v uint8) *Writer {
	w.buf = AppendUint8(w.buf, v)
	return w
}

// PutUint16 writes v.
func (w *Writer) PutUint16(v uint16) *Writer {
	w.buf = AppendUint16(w.buf, v)
	return w
}

// PutUint32 writes v.
func (w *Writer) PutUint32(v uint32) *Writer {
	w.buf = AppendUint32(w.buf, v)
	return w
}

// PutUint64 writes v.
func (w *Writer) PutUint64(v uint64) *Writer {
	w.buf = AppendUint64(w.buf, v)
	return w
}

// PutInt64 writes v.
func (w *Writer) PutInt64(v int64) *Writer {
	w.buf = AppendInt64(w.buf, v)
	return w
}

// PutDuration writes d as a microsecond count.
func (w *Writer) PutDuration(d time.Duration) *Writer {
	w.buf = AppendDuration(w.buf, d)
	return w
}

// Put writes any Serializable value.
func (w *Writer) Put(v Serializable) *Writer {
	w.buf = v.AppendByteStream(w.buf)
	return w
}

// Reader decodes values from a fixed byte range, tracking its position.
// A failed read leaves the position unchanged.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the number of bytes consumed.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Rest returns the unread bytes.
func (r *Reader) Rest() []byte { return r.data[r.pos:] }

// Uint8 reads a uint8.
func (r *Reader) Uint8() (uint8, error) { return Read(r, ReadUint8) }

// Uint16 reads a uint16.
func (r *Reader) Uint16() (uint16, error) { return Read(r, ReadUint16) }

// Uint32 reads a uint32.
func (r *Reader) Uint32() (uint32, error) { return Read(r, ReadUint32) }

// Uint64 reads a uint64.
func (r *Reader) Uint64() (uint64, error) { return Read(r, ReadUint64) }

// Int64 reads an int64.
func (r *Reader) Int64() (int64, error) { return Read(r, ReadInt64) }

// Duration reads a microsecond-encoded duration.
func (r *Reader) Duration() (time.Duration, error) { return Read(r, ReadDuration) }

// Read decodes one value of type T from r with fn and advances r past it.
func Read[T any](r *Reader, fn ReadFunc[T]) (T, error) {
	rest := r.Rest()
	v, after, err := fn(rest)
	if err != nil {
		var zero T
		return zero, err
	}
	r.pos += len(rest) - len(after)
	return v, nil
}
