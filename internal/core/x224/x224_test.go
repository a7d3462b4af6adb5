package x224

import (
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/stretchr/testify/require"
)

func TestConnectionRequest_Encode(t *testing.T) {
	req := ConnectionRequest{UserData: []byte("Cookie: mstshash=eltons\r\n")}
	w := buffer.NewWriter(64)
	require.NoError(t, req.Encode(w))

	require.Equal(t, uint8(6+len(req.UserData)), w.Bytes()[0])
	require.Equal(t, uint8(codeConnectionRequest), w.Bytes()[1])
}

func TestConnectionRequest_RoundTrip(t *testing.T) {
	req := ConnectionRequest{DstRef: 0x1234, SrcRef: 0x5678, ClassOption: 1, UserData: []byte{0xAA, 0xBB}}
	w := buffer.NewWriter(32)
	require.NoError(t, req.Encode(w))

	var got ConnectionRequest
	require.NoError(t, got.Decode(buffer.NewReader(w.Bytes())))
	require.Equal(t, req, got)
}

func TestConnectionConfirm_Decode(t *testing.T) {
	data := []byte{
		0x0e, 0xd0, 0x00, 0x00,
		0x12, 0x34, 0x00, 0x02,
		0x00, 0x08, 0x00, 0x00,
		0x00, 0x00, 0x00,
	}

	var cc ConnectionConfirm
	require.NoError(t, cc.Decode(buffer.NewReader(data)))
	require.Equal(t, uint16(0), cc.DstRef)
	require.Equal(t, uint16(0x1234), cc.SrcRef)
	require.Len(t, cc.UserData, 8)
}

func TestConnectionConfirm_Decode_WrongCode(t *testing.T) {
	data := []byte{0x0e, 0xE0, 0x00, 0x00, 0x12, 0x34, 0x00}
	var cc ConnectionConfirm
	require.Error(t, cc.Decode(buffer.NewReader(data)))
}

func TestData_RoundTrip(t *testing.T) {
	d := Data{UserData: []byte{1, 2, 3, 4}}
	w := buffer.NewWriter(16)
	require.NoError(t, d.Encode(w))
	require.Equal(t, d.Size(), w.Len())

	var got Data
	require.NoError(t, got.Decode(buffer.NewReader(w.Bytes())))
	require.Equal(t, d.UserData, got.UserData)
}

func TestData_Decode_WrongLI(t *testing.T) {
	data := []byte{0x03, 0xF0, 0x80}
	var d Data
	require.Error(t, d.Decode(buffer.NewReader(data)))
}
