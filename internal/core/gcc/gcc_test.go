package gcc

import (
	"bytes"
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/stretchr/testify/require"
)

func TestNewConferenceCreateRequest(t *testing.T) {
	userData := []byte{0x01, 0x02, 0x03, 0x04}
	req := NewConferenceCreateRequest(userData)
	require.Equal(t, userData, req.UserData)
}

func TestConferenceCreateRequest_Serialize(t *testing.T) {
	tests := []struct {
		name     string
		userData []byte
	}{
		{name: "empty user data", userData: []byte{}},
		{name: "simple user data", userData: []byte{0x01, 0x02, 0x03, 0x04}},
		{name: "larger user data", userData: bytes.Repeat([]byte{0xAB}, 100)},
		{name: "typical RDP client data", userData: []byte{0x01, 0x00, 0x08, 0x00, 0x03, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewConferenceCreateRequest(tt.userData)
			serialized := req.Serialize()

			require.NotEmpty(t, serialized)
			require.Equal(t, uint8(0x00), serialized[0])

			if len(tt.userData) > 0 {
				require.True(t, bytes.Contains(serialized, tt.userData))
			}
		})
	}
}

func buildValidGCCResponse() []byte {
	var buf []byte
	buf = append(buf, 0x00)
	buf = append(buf, 0x05, 0x00, 20, 124, 0, 1)
	buf = append(buf, 0x10)
	buf = append(buf, 0x00)
	buf = append(buf, 0x00, 0x00)
	buf = append(buf, 0x01, 0x00)
	buf = append(buf, 0x00)
	buf = append(buf, 0x01)
	buf = append(buf, 0x00)
	buf = append(buf, 0x00)
	buf = append(buf, 'M', 'c', 'D', 'n')
	buf = append(buf, 0x00)
	return buf
}

func buildBadOIDResponse() []byte {
	buf := []byte{0x00, 0x05, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	return buf
}

func buildBadH221Response() []byte {
	var buf []byte
	buf = append(buf, 0x00)
	buf = append(buf, 0x05, 0x00, 20, 124, 0, 1)
	buf = append(buf, 0x10)
	buf = append(buf, 0x00)
	buf = append(buf, 0x00, 0x00)
	buf = append(buf, 0x01, 0x00)
	buf = append(buf, 0x00)
	buf = append(buf, 0x01)
	buf = append(buf, 0x00)
	buf = append(buf, 0x00)
	buf = append(buf, 'X', 'X', 'X', 'X')
	return buf
}

func TestConferenceCreateResponse_Decode(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		wantErr   bool
		errSubstr string
	}{
		{name: "valid response", data: buildValidGCCResponse()},
		{name: "empty data", data: []byte{}, wantErr: true},
		{name: "bad object identifier", data: buildBadOIDResponse(), wantErr: true, errSubstr: "bad object identifier"},
		{name: "bad H221 SC key", data: buildBadH221Response(), wantErr: true, errSubstr: "bad H221 SC_KEY"},
		{name: "truncated data", data: []byte{0x00, 0x05}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &ConferenceCreateResponse{}
			err := resp.Deserialize(buffer.NewReader(tt.data))

			if tt.wantErr {
				require.Error(t, err)
				if tt.errSubstr != "" {
					require.Contains(t, err.Error(), tt.errSubstr)
				}
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConferenceCreateResponse_Decode_Truncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "truncated after choice", data: []byte{0x00}},
		{name: "truncated after oid length", data: []byte{0x00, 0x05}},
		{name: "truncated in oid", data: []byte{0x00, 0x05, 0x00, 0x14}},
		{name: "truncated after oid", data: []byte{0x00, 0x05, 0x00, 20, 124}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &ConferenceCreateResponse{}
			err := resp.Deserialize(buffer.NewReader(tc.data))
			require.Error(t, err)
		})
	}
}
