package tpkt

import (
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	f := Frame{Payload: []byte{0xE0, 0x00, 0x00, 0x00}}

	w := buffer.NewWriter(16)
	require.NoError(t, f.Encode(w))
	require.Equal(t, f.Size(), w.Len())

	var got Frame
	require.NoError(t, got.Decode(buffer.NewReader(w.Bytes())))
	require.Equal(t, f.Payload, got.Payload)
}

func TestFrame_Decode_RejectsShortLength(t *testing.T) {
	data := []byte{0x03, 0x00, 0x00, 0x02} // declared length 2 < header 4
	var f Frame
	err := f.Decode(buffer.NewReader(data))
	require.Error(t, err)

	var invalid *rdperr.InvalidField
	require.ErrorAs(t, err, &invalid)
}

func TestHint_NeedsMore(t *testing.T) {
	need, total, err := Hint([]byte{0x03, 0x00})
	require.NoError(t, err)
	require.Equal(t, 2, need)
	require.Equal(t, 0, total)
}

func TestHint_FullFrame(t *testing.T) {
	data := []byte{0x03, 0x00, 0x00, 0x07, 0xAA, 0xBB, 0xCC}
	need, total, err := Hint(data)
	require.NoError(t, err)
	require.Equal(t, 0, need)
	require.Equal(t, 7, total)
}

func TestHint_PartialBody(t *testing.T) {
	data := []byte{0x03, 0x00, 0x00, 0x07, 0xAA}
	need, total, err := Hint(data)
	require.NoError(t, err)
	require.Equal(t, 2, need)
	require.Equal(t, 7, total)
}

func TestHint_WrongVersion(t *testing.T) {
	_, _, err := Hint([]byte{0x04, 0x00, 0x00, 0x04})
	require.Error(t, err)
}
