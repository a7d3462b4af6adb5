package mcs

import (
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/stretchr/testify/require"
)

func TestConnectPDU_Encode(t *testing.T) {
	pdu := ConnectPDU{
		Application:          connectInitial,
		ClientConnectInitial: NewClientMCSConnectInitial([]byte{0x01, 0x02, 0x03, 0x04}),
	}

	result := pdu.Serialize()
	require.True(t, len(result) > 0)
	require.Equal(t, uint8(0x7f), result[0])
	require.Equal(t, uint8(0x65), result[1])
}

func TestConnectPDUApplication_Values(t *testing.T) {
	require.Equal(t, ConnectPDUApplication(101), connectInitial)
	require.Equal(t, ConnectPDUApplication(102), connectResponse)
	require.Equal(t, ConnectPDUApplication(103), connectAdditional)
	require.Equal(t, ConnectPDUApplication(104), connectResult)
}

func TestNewClientMCSConnectInitial(t *testing.T) {
	userData := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	pdu := NewClientMCSConnectInitial(userData)

	require.Equal(t, []byte{0x01}, pdu.calledDomainSelector)
	require.Equal(t, []byte{0x01}, pdu.callingDomainSelector)
	require.True(t, pdu.upwardFlag)
	require.Equal(t, 34, pdu.targetParameters.maxChannelIds)
	require.Equal(t, 65535, pdu.maximumParameters.maxChannelIds)
	require.Equal(t, 1, pdu.minimumParameters.maxChannelIds)
	require.Equal(t, userData, pdu.userData)
}

func TestClientConnectInitial_Serialize(t *testing.T) {
	pdu := NewClientMCSConnectInitial([]byte{0x01, 0x02})
	result := pdu.Serialize()

	require.True(t, len(result) > 0)
	require.Equal(t, uint8(0x04), result[0]) // octet string tag for calledDomainSelector
}

func TestConnectPDU_Decode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty input", input: []byte{}},
		{name: "truncated application tag", input: []byte{0x7f}},
		{name: "unknown application", input: []byte{0x7f, 0x67, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pdu ConnectPDU
			err := pdu.Decode(buffer.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestServerConnectResponse_Decode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty input", input: []byte{}},
		{name: "truncated result", input: []byte{0x0a}},
		{name: "truncated calledConnectId", input: []byte{0x0a, 0x01, 0x00}},
		{
			name: "bad BER tag for sequence",
			input: []byte{
				0x0a, 0x01, 0x00,
				0x02, 0x01, 0x00,
				0x00, 0x00,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pdu ServerConnectResponse
			err := pdu.Deserialize(buffer.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}
