package session

import (
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/conn"
	"github.com/rcarmo/go-rdp-core/internal/core/fastpath"
	"github.com/rcarmo/go-rdp-core/internal/core/pdu"
	"github.com/stretchr/testify/require"
)

func encodeFastPathUpdate(t *testing.T, u fastpath.Update) []byte {
	t.Helper()
	entry := buffer.NewWriter(64)
	require.NoError(t, u.Encode(entry))

	full := buffer.NewWriter(128)
	hdr := fastpath.Header{Action: fastpath.ActionFastPath}
	require.NoError(t, hdr.Encode(full, entry.Len()))
	require.NoError(t, full.WriteBytes(entry.Bytes()))
	return full.Bytes()
}

func TestMachine_Process_FastPathBitmap_BlitsSurface(t *testing.T) {
	rect := pdu.BitmapData{
		DestLeft: 0, DestTop: 0, DestRight: 1, DestBottom: 0,
		Width: 2, Height: 1, BitsPerPixel: 32,
		BitmapData: []byte{0x10, 0x20, 0x30, 0x00, 0x40, 0x50, 0x60, 0x00},
	}
	body := buffer.NewWriter(64)
	require.NoError(t, (&pdu.BitmapUpdateData{Rectangles: []pdu.BitmapData{rect}}).Encode(body))

	payload := encodeFastPathUpdate(t, fastpath.Update{
		UpdateCode:    fastpath.UpdateCodeBitmap,
		Fragmentation: fastpath.FragmentSingle,
		Payload:       body.Bytes(),
	})

	m := New(conn.ConnectionResult{})
	surface := NewPixelSurface(4, 4)

	outputs, err := m.Process(surface, ActionFastPath, payload)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	require.Equal(t, KindPixelUpdate, outputs[0].Kind)
	require.Equal(t, Rect{X: 0, Y: 0, Width: 2, Height: 1}, outputs[0].Rect)

	require.Equal(t, []byte{0x30, 0x20, 0x10, 0xFF}, surface.Pix[0:4])
	require.Equal(t, []byte{0x60, 0x50, 0x40, 0xFF}, surface.Pix[4:8])
}

func TestMachine_Process_FastPathPointerPosition(t *testing.T) {
	entryBody := buffer.NewWriter(8)
	require.NoError(t, entryBody.WriteUint16LE(12))
	require.NoError(t, entryBody.WriteUint16LE(34))

	payload := encodeFastPathUpdate(t, fastpath.Update{
		UpdateCode:    fastpath.UpdateCodePTRPosition,
		Fragmentation: fastpath.FragmentSingle,
		Payload:       entryBody.Bytes(),
	})

	m := New(conn.ConnectionResult{})
	outputs, err := m.Process(nil, ActionFastPath, payload)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	require.Equal(t, KindPointer, outputs[0].Kind)
	require.Equal(t, PointerPosition, outputs[0].Pointer.Kind)
	require.Equal(t, 12, outputs[0].Pointer.X)
	require.Equal(t, 34, outputs[0].Pointer.Y)
}

func TestMachine_Process_SetErrorInfo_TerminatesSession(t *testing.T) {
	data := pdu.DataPDU{DataHeader: pdu.ShareDataHeader{PDUType2: pdu.ShareDataTypeSetErrorInfo}}
	data.ErrorInfo = &pdu.ErrorInfoPDUData{ErrorInfo: pdu.ErrCodeLogoffByUser}

	w := buffer.NewWriter(64)
	require.NoError(t, data.Encode(w))

	m := New(conn.ConnectionResult{})
	outputs, err := m.Process(nil, ActionSlowPath, w.Bytes())
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	require.Equal(t, KindSessionEnd, outputs[0].Kind)
	require.Equal(t, pdu.ErrCodeLogoffByUser, outputs[0].EndCode)
	require.True(t, m.Ended())

	_, err = m.Process(nil, ActionSlowPath, w.Bytes())
	require.Error(t, err)
	require.ErrorContains(t, err, "session terminated")
}

func TestMachine_Process_DeactivateAll_EndsSession(t *testing.T) {
	header := pdu.ShareControlHeader{TotalLength: 6, PDUType: pdu.ShareControlTypeDeactivateAll}
	w := buffer.NewWriter(8)
	require.NoError(t, header.Encode(w))

	m := New(conn.ConnectionResult{})
	outputs, err := m.Process(nil, ActionSlowPath, w.Bytes())
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	require.Equal(t, KindSessionEnd, outputs[0].Kind)
	require.True(t, m.Ended())
}

func TestMachine_Process_RejectsAfterTermination(t *testing.T) {
	header := pdu.ShareControlHeader{TotalLength: 6, PDUType: pdu.ShareControlTypeDeactivateAll}
	w := buffer.NewWriter(8)
	require.NoError(t, header.Encode(w))

	m := New(conn.ConnectionResult{})
	_, err := m.Process(nil, ActionSlowPath, w.Bytes())
	require.NoError(t, err)

	_, err = m.Process(nil, ActionFastPath, []byte{0x00, 0x00})
	require.Error(t, err)
}
