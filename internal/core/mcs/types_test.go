package mcs

import (
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/stretchr/testify/require"
)

func TestDomainParameters_RoundTrip(t *testing.T) {
	params := domainParameters{
		maxChannelIds: 34, maxUserIds: 2, maxTokenIds: 0, numPriorities: 1,
		minThroughput: 0, maxHeight: 1, maxMCSPDUsize: 65535, protocolVersion: 2,
	}

	w := buffer.NewWriter(32)
	require.NoError(t, params.encode(w))
	require.Equal(t, []byte{
		0x02, 0x01, 0x22,
		0x02, 0x01, 0x02,
		0x02, 0x01, 0x00,
		0x02, 0x01, 0x01,
		0x02, 0x01, 0x00,
		0x02, 0x01, 0x01,
		0x02, 0x02, 0xff, 0xff,
		0x02, 0x01, 0x02,
	}, w.Bytes())

	var got domainParameters
	require.NoError(t, got.decode(buffer.NewReader(w.Bytes())))
	require.Equal(t, params, got)
}

func TestDomainParameters_Decode_Truncated(t *testing.T) {
	var got domainParameters
	err := got.decode(buffer.NewReader([]byte{0x02, 0x01, 0x22}))
	require.Error(t, err)
}

func TestResultTypes(t *testing.T) {
	require.Equal(t, uint8(0), RTSuccessful)
	require.Equal(t, uint8(15), RTUserRejected)
}

func TestReasonTypes(t *testing.T) {
	require.Equal(t, uint8(0), RNDomainDisconnected)
	require.Equal(t, uint8(4), RNChannelPurged)
}
