package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrMalformed is returned when a buffer does not decode cleanly.
var ErrMalformed = errors.New("wire: malformed buffer")

var order = binary.NativeEndian

// Writer fills a buffer of fixed length. Writes past the end are dropped
// but still advance the offset, so Offset() != Len() after encoding
// reveals a size accounting error instead of panicking mid-write.
type Writer struct {
	buf []byte
	off int
}

func NewWriter(size uint32) *Writer {
	return &Writer{buf: make([]byte, size)}
}

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }
func (w *Writer) Offset() int   { return w.off }

func (w *Writer) room(n int) []byte {
	start := w.off
	w.off += n
	if w.off > len(w.buf) {
		return nil
	}
	return w.buf[start:w.off]
}

func (w *Writer) U8(v uint8) {
	if b := w.room(1); b != nil {
		b[0] = v
	}
}

func (w *Writer) U16(v uint16) {
	if b := w.room(2); b != nil {
		order.PutUint16(b, v)
	}
}

func (w *Writer) U32(v uint32) {
	if b := w.room(4); b != nil {
		order.PutUint32(b, v)
	}
}

func (w *Writer) Bool32(v bool) {
	if v {
		w.U32(1)
		return
	}
	w.U32(0)
}

func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

func (w *Writer) Vec2(v mgl32.Vec2) {
	w.F32(v[0])
	w.F32(v[1])
}

func (w *Writer) Vec3(v mgl32.Vec3) {
	w.F32(v[0])
	w.F32(v[1])
	w.F32(v[2])
}

func (w *Writer) Vec4(v mgl32.Vec4) {
	for _, f := range v {
		w.F32(f)
	}
}

// Quat writes x, y, z, w.
func (w *Writer) Quat(q mgl32.Quat) {
	w.Vec3(q.V)
	w.F32(q.W)
}

func (w *Writer) Raw(p []byte) {
	if b := w.room(len(p)); b != nil {
		copy(b, p)
	}
}

// Fixed writes s truncated or zero padded to exactly n bytes. Truncation
// never splits a rune.
func (w *Writer) Fixed(s string, n int) {
	b := w.room(n)
	if b == nil {
		return
	}
	if len(s) > n {
		k := n
		for k > 0 && !utf8.RuneStart(s[k]) {
			k--
		}
		s = s[:k]
	}
	copy(b, s)
}

// Reader walks a received buffer. The first short read latches an error;
// later reads return zero values.
type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

func (r *Reader) Err() error     { return r.err }
func (r *Reader) Offset() int    { return r.off }
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.Remaining() < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformed, n, r.off, r.Remaining())
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *Reader) U16() uint16 {
	if b := r.take(2); b != nil {
		return order.Uint16(b)
	}
	return 0
}

func (r *Reader) U32() uint32 {
	if b := r.take(4); b != nil {
		return order.Uint32(b)
	}
	return 0
}

func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }

func (r *Reader) Vec2() mgl32.Vec2 { return mgl32.Vec2{r.F32(), r.F32()} }

func (r *Reader) Vec3() mgl32.Vec3 { return mgl32.Vec3{r.F32(), r.F32(), r.F32()} }

func (r *Reader) Vec4() mgl32.Vec4 { return mgl32.Vec4{r.F32(), r.F32(), r.F32(), r.F32()} }

func (r *Reader) Quat() mgl32.Quat {
	v := r.Vec3()
	return mgl32.Quat{V: v, W: r.F32()}
}

// Raw returns a copy of the next n bytes.
func (r *Reader) Raw(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Fixed reads an n byte field and cuts it at the first NUL.
func (r *Reader) Fixed(n int) string {
	b := r.take(n)
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// count reads a length prefix and rejects counts that cannot fit in the
// rest of the buffer given the element width.
func (r *Reader) count(width int) int {
	n := int(r.U32())
	if r.err == nil && width > 0 && n > r.Remaining()/width {
		r.err = fmt.Errorf("%w: count %d of %d-byte elements exceeds %d remaining bytes", ErrMalformed, n, width, r.Remaining())
		return 0
	}
	return n
}
