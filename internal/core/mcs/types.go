// Package mcs implements the Multipoint Communication Service (T.125) PDUs
// carried inside X.224 Data TPDUs during RDP connection establishment and
// for the lifetime of the session's virtual channels.
package mcs

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/encoding"
)

// Domain-wide result codes (T.125 Result ::= ENUMERATED).
const (
	RTSuccessful uint8 = iota
	RTDomainMerging
	RTDomainNotHierarchical
	RTNoSuchChannel
	RTNoSuchDomain
	RTNoSuchUser
	RTNotAdmitted
	RTOtherUserId
	RTParametersUnacceptable
	RTTokenNotAvailable
	RTTokenNotPossessed
	RTTooManyChannels
	RTTooManyTokens
	RTTooManyUsers
	RTUnspecifiedFailure
	RTUserRejected
)

// Disconnect reason codes (T.125 Reason ::= ENUMERATED).
const (
	RNDomainDisconnected uint8 = iota
	RNProviderInitiated
	RNTokenPurged
	RNUserRequested
	RNChannelPurged
)

// domainParameters is the T.125 DomainParameters SEQUENCE negotiated during
// Connect-Initial/Connect-Response.
type domainParameters struct {
	maxChannelIds   int
	maxUserIds      int
	maxTokenIds     int
	numPriorities   int
	minThroughput   int
	maxHeight       int
	maxMCSPDUsize   int
	protocolVersion int
}

func (p *domainParameters) encode(w *buffer.Writer) error {
	for _, v := range []int{
		p.maxChannelIds, p.maxUserIds, p.maxTokenIds, p.numPriorities,
		p.minThroughput, p.maxHeight, p.maxMCSPDUsize, p.protocolVersion,
	} {
		if err := encoding.BerWriteInteger(v, w); err != nil {
			return err
		}
	}
	return nil
}

func (p *domainParameters) decode(r *buffer.Reader) error {
	fields := []*int{
		&p.maxChannelIds, &p.maxUserIds, &p.maxTokenIds, &p.numPriorities,
		&p.minThroughput, &p.maxHeight, &p.maxMCSPDUsize, &p.protocolVersion,
	}
	for _, f := range fields {
		v, err := encoding.BerReadInteger(r)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}
