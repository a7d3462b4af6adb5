package mcs

import (
	"errors"
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/stretchr/testify/require"
)

func TestDomainPDU_Encode(t *testing.T) {
	tests := []struct {
		name     string
		pdu      DomainPDU
		expected []byte
	}{
		{
			name: "attachUserRequest",
			pdu: DomainPDU{
				Application:             attachUserRequest,
				ClientAttachUserRequest: &ClientAttachUserRequest{},
			},
			expected: []byte{0x28},
		},
		{
			name: "erectDomainRequest",
			pdu: DomainPDU{
				Application:              erectDomainRequest,
				ClientErectDomainRequest: &ClientErectDomainRequest{},
			},
			expected: []byte{0x04, 0x01, 0x00, 0x01, 0x00},
		},
		{
			name: "channelJoinRequest",
			pdu: DomainPDU{
				Application: channelJoinRequest,
				ClientChannelJoinRequest: &ClientChannelJoinRequest{
					Initiator: 1007,
					ChannelId: 1003,
				},
			},
			expected: []byte{0x38, 0x00, 0x06, 0x03, 0xeb},
		},
		{
			name: "SendDataRequest",
			pdu: DomainPDU{
				Application: SendDataRequest,
				ClientSendDataRequest: &ClientSendDataRequest{
					Initiator: 1007,
					ChannelId: 1003,
					Data:      []byte{0x01, 0x02, 0x03},
				},
			},
			expected: []byte{0x64, 0x00, 0x06, 0x03, 0xeb, 0x70, 0x03, 0x01, 0x02, 0x03},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.pdu.Serialize())
		})
	}
}

func TestDomainPDU_Decode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected DomainPDU
		wantErr  error
	}{
		{
			name:  "attachUserConfirm",
			input: []byte{0x2e, 0x00, 0x00, 0x06},
			expected: DomainPDU{
				Application:             attachUserConfirm,
				ServerAttachUserConfirm: &ServerAttachUserConfirm{Result: 0x00, Initiator: 1007},
			},
		},
		{
			name:  "channelJoinConfirm",
			input: []byte{0x3e, 0x00, 0x00, 0x06, 0x03, 0xeb, 0x03, 0xeb},
			expected: DomainPDU{
				Application: channelJoinConfirm,
				ServerChannelJoinConfirm: &ServerChannelJoinConfirm{
					Result: 0x00, Initiator: 1007, Requested: 1003, ChannelId: 1003,
				},
			},
		},
		{
			name:  "SendDataIndication",
			input: []byte{0x68, 0x00, 0x06, 0x03, 0xeb, 0x00, 0x03},
			expected: DomainPDU{
				Application:              SendDataIndication,
				ServerSendDataIndication: &ServerSendDataIndication{Initiator: 1007, ChannelId: 1003},
			},
		},
		{
			name:  "SendDataRequest decode",
			input: []byte{0x64, 0x00, 0x06, 0x03, 0xeb, 0x70, 0x03},
			expected: DomainPDU{
				Application:           SendDataRequest,
				ClientSendDataRequest: &ClientSendDataRequest{Initiator: 1007, ChannelId: 1003},
			},
		},
		{
			name:    "disconnectProviderUltimatum",
			input:   []byte{0x20, 0x80},
			wantErr: ErrDisconnectUltimatum,
		},
		{
			name:    "unknown application",
			input:   []byte{0x00},
			wantErr: ErrUnknownDomainApplication,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var actual DomainPDU
			err := actual.Decode(buffer.NewReader(tc.input))

			if tc.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.wantErr), "got: %v, want: %v", err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestClientSendDataRequest_Encode(t *testing.T) {
	tests := []struct {
		name     string
		req      ClientSendDataRequest
		expected []byte
	}{
		{
			name:     "basic data",
			req:      ClientSendDataRequest{Initiator: 1007, ChannelId: 1003, Data: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
			expected: []byte{0x00, 0x06, 0x03, 0xeb, 0x70, 0x04, 0xDE, 0xAD, 0xBE, 0xEF},
		},
		{
			name:     "empty data",
			req:      ClientSendDataRequest{Initiator: 1007, ChannelId: 1003, Data: []byte{}},
			expected: []byte{0x00, 0x06, 0x03, 0xeb, 0x70, 0x00},
		},
		{
			name:     "different channel",
			req:      ClientSendDataRequest{Initiator: 1007, ChannelId: 1004, Data: []byte{0x01}},
			expected: []byte{0x00, 0x06, 0x03, 0xec, 0x70, 0x01, 0x01},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.req.Serialize())
		})
	}
}

func TestClientSendDataRequest_Decode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected ClientSendDataRequest
		wantErr  bool
	}{
		{
			name:     "valid request",
			input:    []byte{0x00, 0x06, 0x03, 0xeb, 0x70, 0x04},
			expected: ClientSendDataRequest{Initiator: 1007, ChannelId: 1003},
		},
		{name: "truncated initiator", input: []byte{0x00}, wantErr: true},
		{name: "truncated channel", input: []byte{0x00, 0x06}, wantErr: true},
		{name: "missing magic", input: []byte{0x00, 0x06, 0x03, 0xeb}, wantErr: true},
		{name: "missing length", input: []byte{0x00, 0x06, 0x03, 0xeb, 0x70}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var actual ClientSendDataRequest
			err := actual.Deserialize(buffer.NewReader(tc.input))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestServerSendDataIndication_Decode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected ServerSendDataIndication
		wantErr  bool
	}{
		{
			name:     "valid indication",
			input:    []byte{0x00, 0x06, 0x03, 0xeb, 0x00, 0x04},
			expected: ServerSendDataIndication{Initiator: 1007, ChannelId: 1003},
		},
		{name: "truncated initiator", input: []byte{0x00}, wantErr: true},
		{name: "missing enumerates", input: []byte{0x00, 0x06, 0x03, 0xeb}, wantErr: true},
		{name: "missing length", input: []byte{0x00, 0x06, 0x03, 0xeb, 0x00}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var actual ServerSendDataIndication
			err := actual.Deserialize(buffer.NewReader(tc.input))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestServerAttachUserConfirm_Decode(t *testing.T) {
	w := buffer.NewReader([]byte{0x00, 0x00, 0x06})
	var got ServerAttachUserConfirm
	require.NoError(t, got.decode(w))
	require.Equal(t, ServerAttachUserConfirm{Result: 0, Initiator: 1007}, got)
}

func TestServerChannelJoinConfirm_Decode_NoOptionalChannelId(t *testing.T) {
	r := buffer.NewReader([]byte{0x00, 0x00, 0x06, 0x03, 0xef})
	var got ServerChannelJoinConfirm
	require.NoError(t, got.decode(r))
	require.Equal(t, ServerChannelJoinConfirm{Result: 0, Initiator: 1007, Requested: 1007, ChannelId: 0}, got)
}

func TestClientChannelJoinRequest_Encode(t *testing.T) {
	req := ClientChannelJoinRequest{Initiator: 1007, ChannelId: 1003}
	require.Equal(t, []byte{0x00, 0x06, 0x03, 0xeb}, req.Serialize())
}

func TestClientAttachUserRequest_Serialize(t *testing.T) {
	req := ClientAttachUserRequest{}
	require.Nil(t, req.Serialize())
}

func TestClientErectDomainRequest_Serialize(t *testing.T) {
	req := ClientErectDomainRequest{}
	require.Equal(t, []byte{0x01, 0x00, 0x01, 0x00}, req.Serialize())
}
