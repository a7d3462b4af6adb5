package mcs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		err error
		msg string
	}{
		{ErrChannelNotFound, "channel not found"},
		{ErrUnknownConnectApplication, "unknown connect application"},
		{ErrUnknownDomainApplication, "unknown domain application"},
		{ErrUnknownChannel, "unknown channel"},
		{ErrDisconnectUltimatum, "disconnect ultimatum"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			require.EqualError(t, tt.err, tt.msg)
		})
	}
}
