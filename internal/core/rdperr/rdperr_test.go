package rdperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotEnoughBytes_Error(t *testing.T) {
	err := &NotEnoughBytes{Needed: 4, Available: 2, Context: "uint32"}
	require.Equal(t, "not enough bytes for uint32: needed 4, available 2", err.Error())

	bare := &NotEnoughBytes{Needed: 1, Available: 0}
	require.Equal(t, "not enough bytes: needed 1, available 0", bare.Error())
}

func TestInvalidField_Unwrap(t *testing.T) {
	inner := errors.New("bad tag")
	err := &InvalidField{Name: "capabilitySetLength", Reason: "exceeds PDU bounds", Cause: inner}

	require.Equal(t, `invalid field "capabilitySetLength": exceeds PDU bounds`, err.Error())
	require.ErrorIs(t, err, inner)
}

func TestReport_ChainsCauses(t *testing.T) {
	inner := &InvalidField{Name: "tag", Reason: "unexpected ASN.1 tag: expected SEQUENCE, got CONTEXT-SPECIFIC [19]"}
	mid := &AuthenticationFailure{SubCause: "invalid X.509 certificate", Cause: inner}
	outer := &CodecFailure{Codec: "license", Reason: "invalid server license", Cause: mid}

	got := Report(outer)
	want := "codec failure in license: invalid server license, " +
		"caused by authentication failure: invalid X.509 certificate, " +
		`caused by invalid field "tag": unexpected ASN.1 tag: expected SEQUENCE, got CONTEXT-SPECIFIC [19]`
	require.Equal(t, want, got)
}

func TestReport_Nil(t *testing.T) {
	require.Equal(t, "", Report(nil))
}

func TestSessionTerminated_Fields(t *testing.T) {
	err := &SessionTerminated{Reason: "disconnected_by_server", ReasonCode: 0x0000000C}
	require.Contains(t, err.Error(), "disconnected_by_server")
	fields := err.Fields()
	require.Len(t, fields, 2)
}

func TestNegotiationFailure_Error(t *testing.T) {
	err := &NegotiationFailure{Step: "connection_initiation", Code: 5, Name: "HYBRID_REQUIRED_BY_SERVER"}
	require.Contains(t, err.Error(), "HYBRID_REQUIRED_BY_SERVER")
	require.Contains(t, err.Error(), "connection_initiation")
}

func TestUnexpectedMessageType_Error(t *testing.T) {
	err := &UnexpectedMessageType{Phase: "channel_connection", Got: "ChannelJoinConfirm(unrequested)"}
	require.Contains(t, err.Error(), "channel_connection")
}
