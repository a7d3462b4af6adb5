package pdu

import (
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/stretchr/testify/require"
)

func TestNegotiationRequest_Encode(t *testing.T) {
	req := NegotiationRequest{Flags: 0, RequestedProtocols: NegotiationProtocolHybrid}
	got := req.Serialize()
	require.Equal(t, []byte{0x01, 0x00, 0x08, 0x00, 0x02, 0x00, 0x00, 0x00}, got)
}

func TestClientConnectionRequest_Encode_WithCookie(t *testing.T) {
	pdu := &ClientConnectionRequest{
		Cookie:             "eltons",
		NegotiationRequest: NegotiationRequest{RequestedProtocols: NegotiationProtocolSSL},
	}
	got := pdu.Serialize()
	require.Contains(t, string(got), "Cookie: mstshash=eltons\r\n")
}

func TestCorrelationInfo_SetCorrelationID_Invalid(t *testing.T) {
	var info CorrelationInfo
	require.Error(t, info.SetCorrelationID([]byte{0x01, 0x02}))
	require.Error(t, info.SetCorrelationID(append([]byte{0x00}, make([]byte, 15)...)))

	bad := make([]byte, 16)
	for i := range bad {
		bad[i] = 0x01
	}
	bad[5] = 0x0D
	require.Error(t, info.SetCorrelationID(bad))
}

func TestCorrelationInfo_RoundTrip(t *testing.T) {
	id := make([]byte, 16)
	for i := range id {
		id[i] = byte(i + 0x20)
	}
	info := CorrelationInfo{}
	require.NoError(t, info.SetCorrelationID(id))

	encoded := info.Serialize()
	require.Len(t, encoded, 36)
	require.Equal(t, uint8(0x06), encoded[0])
	require.Equal(t, id, encoded[4:20])
}

func TestServerConnectionConfirm_Decode(t *testing.T) {
	data := []byte{0x02, 0x00, 0x08, 0x00, 0x02, 0x00, 0x00, 0x00}
	var pdu ServerConnectionConfirm
	require.NoError(t, pdu.Decode(buffer.NewReader(data)))
	require.True(t, pdu.Type.IsResponse())
	require.Equal(t, NegotiationProtocolHybrid, pdu.SelectedProtocol())
}

func TestServerConnectionConfirm_Decode_Failure(t *testing.T) {
	data := []byte{0x03, 0x00, 0x08, 0x00, 0x05, 0x00, 0x00, 0x00}
	var pdu ServerConnectionConfirm
	require.NoError(t, pdu.Decode(buffer.NewReader(data)))
	require.True(t, pdu.Type.IsFailure())
	require.Equal(t, NegotiationFailureCodeHybridRequired, pdu.FailureCode())
}
