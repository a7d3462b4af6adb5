package pdu

import "errors"

var (
	// ErrInvalidCorrelationID indicates a correlation ID violates MS-RDPBCGR 2.2.1.1.2.
	ErrInvalidCorrelationID = errors.New("invalid correlationId")
	// ErrDeactivateAll indicates the server sent a Deactivate All PDU (MS-RDPBCGR 2.2.3.1).
	ErrDeactivateAll = errors.New("deactivate all")
)
