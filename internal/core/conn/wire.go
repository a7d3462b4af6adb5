package conn

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/mcs"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
	"github.com/rcarmo/go-rdp-core/internal/core/tpkt"
	"github.com/rcarmo/go-rdp-core/internal/core/x224"
)

// writeX224 wraps payload in an X.224 Data TPDU inside a TPKT frame and
// appends it to out. Every PDU exchanged after the initial negotiation
// rides this envelope.
func writeX224(out *buffer.Writer, payload []byte) error {
	data := x224.Data{UserData: payload}
	frame := tpkt.Frame{Payload: func() []byte {
		w := buffer.NewWriter(data.Size())
		_ = data.Encode(w)
		return w.Bytes()
	}()}
	return frame.Encode(out)
}

// readX224 strips the TPKT/X.224 Data envelope from one complete frame,
// returning the enclosed MCS or negotiation payload.
func readX224(input []byte) ([]byte, error) {
	var frame tpkt.Frame
	if err := frame.Decode(buffer.NewReader(input)); err != nil {
		return nil, err
	}
	var data x224.Data
	if err := data.Decode(buffer.NewReader(frame.Payload)); err != nil {
		return nil, err
	}
	return data.UserData, nil
}

// writeSendDataRequest wraps payload in an MCS Send-Data-Request addressed
// to channelID under userID, then in its X.224/TPKT envelope.
func writeSendDataRequest(out *buffer.Writer, userID, channelID uint16, payload []byte) error {
	req := mcs.DomainPDU{
		Application: mcs.SendDataRequest,
		ClientSendDataRequest: &mcs.ClientSendDataRequest{
			Initiator: userID,
			ChannelId: channelID,
			Data:      payload,
		},
	}
	return writeX224(out, req.Serialize())
}

// readSendDataIndication strips the MCS Send-Data-Indication header from a
// decoded X.224 payload, returning the enclosed PDU bytes and channel ID.
func readSendDataIndication(x224Payload []byte) (channelID uint16, payload []byte, err error) {
	r := buffer.NewReader(x224Payload)
	var d mcs.DomainPDU
	if err := d.Decode(r); err != nil {
		return 0, nil, err
	}
	if d.ServerSendDataIndication == nil {
		return 0, nil, &rdperr.UnexpectedMessageType{Phase: "conn", Got: "mcsDomainPDU", Allowed: []string{"sendDataIndication"}}
	}
	return d.ServerSendDataIndication.ChannelId, r.Remaining(), nil
}
