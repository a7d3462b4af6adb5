package buffer

import (
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
	"github.com/stretchr/testify/require"
)

func TestReader_Uint16LE_RoundTrip(t *testing.T) {
	w := NewWriter(4)
	require.NoError(t, w.WriteUint16LE(0xBEEF))

	r := NewReader(w.Bytes())
	v, err := r.Uint16LE()
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), v)
	require.Equal(t, 0, r.Len())
}

func TestReader_Uint16BE(t *testing.T) {
	r := NewReader([]byte{0x00, 0x08})
	v, err := r.Uint16BE()
	require.NoError(t, err)
	require.Equal(t, uint16(8), v)
}

func TestReader_Underflow(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.Uint16LE()
	require.Error(t, err)

	var nb *rdperr.NotEnoughBytes
	require.ErrorAs(t, err, &nb)
	require.Equal(t, 2, nb.Needed)
	require.Equal(t, 1, nb.Available)
}

func TestReader_UTF16LE_NonBMP(t *testing.T) {
	w := NewWriter(16)
	require.NoError(t, w.WriteUTF16LE("a\U0001F600b", false))

	r := NewReader(w.Bytes())
	s, err := r.UTF16LE(w.Len())
	require.NoError(t, err)
	require.Equal(t, "a\U0001F600b", s)
}

func TestReader_UTF16LE_TrimsNullTerminator(t *testing.T) {
	w := NewWriter(16)
	require.NoError(t, w.WriteUTF16LE("hi", true))

	r := NewReader(w.Bytes())
	s, err := r.UTF16LE(w.Len())
	require.NoError(t, err)
	require.Equal(t, "hi", s)
}

func TestWriter_FixedCapacity_Overflow(t *testing.T) {
	dst := make([]byte, 0, 2)
	w := NewFixedWriter(dst)
	require.NoError(t, w.WriteUint16LE(1))

	err := w.WriteUint8(2)
	require.Error(t, err)

	var nb *rdperr.NotEnoughBytes
	require.ErrorAs(t, err, &nb)
}

func TestWriter_PatchUint16LE(t *testing.T) {
	w := NewWriter(8)
	require.NoError(t, w.WriteUint16LE(0)) // placeholder length
	require.NoError(t, w.WriteBytes([]byte{1, 2, 3}))

	w.PatchUint16LE(0, uint16(w.Len()))

	r := NewReader(w.Bytes())
	length, err := r.Uint16LE()
	require.NoError(t, err)
	require.Equal(t, uint16(5), length)
}

func TestBit(t *testing.T) {
	require.True(t, Bit(0b0000_0100, 2))
	require.False(t, Bit(0b0000_0100, 1))
}

func TestReader_Skip(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})
	require.NoError(t, r.Skip(2))
	v, err := r.Uint8()
	require.NoError(t, err)
	require.Equal(t, uint8(3), v)
}

func TestReader_CopyBytes_Independent(t *testing.T) {
	src := []byte{1, 2, 3}
	r := NewReader(src)
	out, err := r.CopyBytes(3)
	require.NoError(t, err)
	src[0] = 0xFF
	require.Equal(t, byte(1), out[0])
}
