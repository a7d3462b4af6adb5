// Package buffer provides cursor-based reading and writing over byte
// slices for the RDP codec layers. Readers never panic: every getter
// returns an error on underflow. Writers never perform I/O: they fill a
// caller-owned or self-grown byte slice and track a watermark of bytes
// written so far.
package buffer

import (
	"unicode/utf16"

	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// Reader is a bounds-checked cursor over a byte slice.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential, bounds-checked reads.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Data returns the full underlying slice (for hinting and re-slicing).
func (r *Reader) Data() []byte {
	return r.data
}

// Remaining returns the unread tail of the buffer without consuming it.
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

func (r *Reader) need(n int, context string) error {
	if r.Len() < n {
		return &rdperr.NotEnoughBytes{Needed: n, Available: r.Len(), Context: context}
	}
	return nil
}

// Skip advances the cursor by n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if err := r.need(n, "skip"); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	if err := r.need(1, "uint8"); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// Bool8 reads one byte and reports whether it is non-zero.
func (r *Reader) Bool8() (bool, error) {
	v, err := r.Uint8()
	return v != 0, err
}

// Uint16LE reads a little-endian 16-bit integer.
func (r *Reader) Uint16LE() (uint16, error) {
	if err := r.need(2, "uint16le"); err != nil {
		return 0, err
	}
	v := uint16(r.data[r.pos]) | uint16(r.data[r.pos+1])<<8
	r.pos += 2
	return v, nil
}

// Uint16BE reads a big-endian 16-bit integer (TPKT/X.224 lengths).
func (r *Reader) Uint16BE() (uint16, error) {
	if err := r.need(2, "uint16be"); err != nil {
		return 0, err
	}
	v := uint16(r.data[r.pos])<<8 | uint16(r.data[r.pos+1])
	r.pos += 2
	return v, nil
}

// Uint32LE reads a little-endian 32-bit integer.
func (r *Reader) Uint32LE() (uint32, error) {
	if err := r.need(4, "uint32le"); err != nil {
		return 0, err
	}
	v := uint32(r.data[r.pos]) | uint32(r.data[r.pos+1])<<8 |
		uint32(r.data[r.pos+2])<<16 | uint32(r.data[r.pos+3])<<24
	r.pos += 4
	return v, nil
}

// Uint32BE reads a big-endian 32-bit integer.
func (r *Reader) Uint32BE() (uint32, error) {
	if err := r.need(4, "uint32be"); err != nil {
		return 0, err
	}
	v := uint32(r.data[r.pos])<<24 | uint32(r.data[r.pos+1])<<16 |
		uint32(r.data[r.pos+2])<<8 | uint32(r.data[r.pos+3])
	r.pos += 4
	return v, nil
}

// Bytes reads exactly n raw bytes. The returned slice aliases the reader's
// backing array; callers that retain it beyond the current decode must copy.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n, "bytes"); err != nil {
		return nil, err
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// CopyBytes reads exactly n raw bytes into a freshly allocated slice.
func (r *Reader) CopyBytes(n int) ([]byte, error) {
	v, err := r.Bytes(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, v)
	return out, nil
}

// UTF16LE reads byteLen bytes and decodes them as UTF-16LE, preserving
// non-BMP code points via surrogate pairs.
func (r *Reader) UTF16LE(byteLen int) (string, error) {
	if byteLen%2 != 0 {
		return "", &rdperr.InvalidField{Name: "utf16le_length", Reason: "odd byte length"}
	}
	raw, err := r.Bytes(byteLen)
	if err != nil {
		return "", err
	}

	units := make([]uint16, byteLen/2)
	for i := range units {
		units[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
	}
	// Trim a single trailing NUL terminator, matching MS-RDPBCGR's
	// null-terminated Unicode string fields.
	if n := len(units); n > 0 && units[n-1] == 0 {
		units = units[:n-1]
	}
	return string(utf16.Decode(units)), nil
}

// Bit reports whether bit index (0 = least significant) is set in b.
func Bit(b uint8, index uint) bool {
	return b&(1<<index) != 0
}
