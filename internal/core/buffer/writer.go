package buffer

import (
	"unicode/utf16"

	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// Writer is a growable byte buffer that tracks a "filled" watermark. A
// Writer created over a caller-supplied fixed-capacity slice (via
// NewFixedWriter) never reallocates and reports NotEnoughBytes instead of
// growing.
type Writer struct {
	buf   []byte
	fixed bool
}

// NewWriter creates a growable writer with an initial capacity hint.
func NewWriter(capHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capHint)}
}

// NewFixedWriter creates a writer over a caller-owned slice. Writes past
// cap(dst) fail with NotEnoughBytes rather than reallocating.
func NewFixedWriter(dst []byte) *Writer {
	return &Writer{buf: dst[:0], fixed: true}
}

// Len returns the number of bytes written so far (the filled watermark).
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the filled region.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) grow(n int) error {
	if !w.fixed {
		return nil
	}
	if len(w.buf)+n > cap(w.buf) {
		return &rdperr.NotEnoughBytes{Needed: n, Available: cap(w.buf) - len(w.buf), Context: "fixed writer"}
	}
	return nil
}

// WriteUint8 appends one byte.
func (w *Writer) WriteUint8(v uint8) error {
	if err := w.grow(1); err != nil {
		return err
	}
	w.buf = append(w.buf, v)
	return nil
}

// WriteBool8 appends 1 if v else 0.
func (w *Writer) WriteBool8(v bool) error {
	if v {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

// WriteUint16LE appends a little-endian 16-bit integer.
func (w *Writer) WriteUint16LE(v uint16) error {
	if err := w.grow(2); err != nil {
		return err
	}
	w.buf = append(w.buf, byte(v), byte(v>>8))
	return nil
}

// WriteUint16BE appends a big-endian 16-bit integer.
func (w *Writer) WriteUint16BE(v uint16) error {
	if err := w.grow(2); err != nil {
		return err
	}
	w.buf = append(w.buf, byte(v>>8), byte(v))
	return nil
}

// WriteUint32LE appends a little-endian 32-bit integer.
func (w *Writer) WriteUint32LE(v uint32) error {
	if err := w.grow(4); err != nil {
		return err
	}
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	return nil
}

// WriteUint32BE appends a big-endian 32-bit integer.
func (w *Writer) WriteUint32BE(v uint32) error {
	if err := w.grow(4); err != nil {
		return err
	}
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	return nil
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(p []byte) error {
	if err := w.grow(len(p)); err != nil {
		return err
	}
	w.buf = append(w.buf, p...)
	return nil
}

// WriteZeros appends n zero bytes, used for reserved/padding fields.
func (w *Writer) WriteZeros(n int) error {
	if err := w.grow(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
	return nil
}

// WriteUTF16LE appends s encoded as UTF-16LE, followed by a NUL terminator
// when nullTerminate is set, preserving non-BMP code points as surrogate
// pairs.
func (w *Writer) WriteUTF16LE(s string, nullTerminate bool) error {
	units := utf16.Encode([]rune(s))
	if nullTerminate {
		units = append(units, 0)
	}
	if err := w.grow(len(units) * 2); err != nil {
		return err
	}
	for _, u := range units {
		w.buf = append(w.buf, byte(u), byte(u>>8))
	}
	return nil
}

// PatchUint16LE overwrites a previously written little-endian uint16 at a
// fixed offset, used for length-prefix backpatching after the body has been
// encoded.
func (w *Writer) PatchUint16LE(offset int, v uint16) {
	w.buf[offset] = byte(v)
	w.buf[offset+1] = byte(v >> 8)
}

// PatchUint16BE overwrites a previously written big-endian uint16 at a fixed
// offset.
func (w *Writer) PatchUint16BE(offset int, v uint16) {
	w.buf[offset] = byte(v >> 8)
	w.buf[offset+1] = byte(v)
}
