package input

import (
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/fastpath"
	"github.com/rcarmo/go-rdp-core/internal/core/pdu"
	"github.com/stretchr/testify/require"
)

func TestEncoder_Pack_SingleEvent(t *testing.T) {
	e := NewEncoder()
	w := buffer.NewWriter(32)

	events := []Event{pdu.NewSynchronizeEvent(pdu.SyncNumLock)}
	n, err := e.Pack(events, w)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	r := buffer.NewReader(w.Bytes())
	var out fastpath.InputEventPDU
	require.NoError(t, out.Decode(r))
	require.Len(t, out.Events, 1)
	require.Equal(t, pdu.InputEventCodeSync, out.Events[0].EventCode)
}

func TestEncoder_Pack_MixedEvents_RoundTrip(t *testing.T) {
	e := NewEncoder()
	w := buffer.NewWriter(64)

	events := []Event{
		pdu.NewKeyboardEvent(0, 0x1E),
		pdu.NewMouseEvent(pdu.PTRFlagsMove, 100, 200),
		pdu.NewUnicodeKeyboardEvent(pdu.KBDFlagsRelease, 'a'),
	}
	n, err := e.Pack(events, w)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	r := buffer.NewReader(w.Bytes())
	var out fastpath.InputEventPDU
	require.NoError(t, out.Decode(r))
	require.Len(t, out.Events, 3)
	require.Equal(t, uint16(100), out.Events[1].XPos)
}

func TestEncoder_Pack_OverflowStartsNewPDU(t *testing.T) {
	e := NewEncoder()
	w := buffer.NewWriter(1 << 16)

	count := fastpath.MaxPDULength/2 + 10
	events := make([]Event, count)
	for i := range events {
		events[i] = pdu.NewMouseEvent(pdu.PTRFlagsMove, uint16(i), uint16(i))
	}

	n, err := e.Pack(events, w)
	require.NoError(t, err)
	require.True(t, n >= 2, "expected overflow to produce multiple PDUs, got %d", n)

	r := buffer.NewReader(w.Bytes())
	total := 0
	for i := 0; i < n; i++ {
		var out fastpath.InputEventPDU
		require.NoError(t, out.Decode(r))
		total += len(out.Events)
	}
	require.Equal(t, count, total)
}

func TestEncoder_Pack_Empty(t *testing.T) {
	e := NewEncoder()
	w := buffer.NewWriter(8)

	n, err := e.Pack(nil, w)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, 0, w.Len())
}
