package main

import (
	"context"
	"fmt"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/conn"
	"github.com/rcarmo/go-rdp-core/internal/core/input"
	"github.com/rcarmo/go-rdp-core/internal/core/mcs"
	"github.com/rcarmo/go-rdp-core/internal/core/pdu"
	"github.com/rcarmo/go-rdp-core/internal/core/session"
	"github.com/rcarmo/go-rdp-core/internal/core/tpkt"
	"github.com/rcarmo/go-rdp-core/internal/core/x224"
	"github.com/rcarmo/go-rdp-core/internal/corelog"
)

// runSession pumps frames from wc through a session.Machine until the
// session ends or ctx is canceled, publishing every output to h and
// encoding every inputMessage h receives back onto the wire.
func runSession(ctx context.Context, wc *wireConn, result conn.ConnectionResult, h *hub, sink corelog.Sink) error {
	m := session.New(result)
	surface := session.NewPixelSurface(int(result.DesktopWidth), int(result.DesktopHeight))
	enc := input.NewEncoder()

	go pumpInput(ctx, wc, enc, h)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := wc.ReadHint(ctx, 0)
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		action := session.ActionSlowPath
		body := frame
		if frame[0]&0x3 == 0x0 {
			action = session.ActionFastPath
		} else {
			body, err = unwrapSlowPathFrame(frame)
			if err != nil {
				corelog.Emit(sink, corelog.Diagnostic{Level: corelog.LevelWarn, Phase: "session", Message: err.Error()})
				continue
			}
		}

		outputs, err := m.Process(surface, action, body)
		if err != nil {
			corelog.Emit(sink, corelog.Diagnostic{Level: corelog.LevelWarn, Phase: "session", Message: err.Error()})
			continue
		}

		h.publish(outputs)
		for _, o := range outputs {
			if o.Kind == session.KindPixelUpdate {
				h.publishSurfacePatch(o.Rect, extractRect(surface, o.Rect))
			}
			if o.Kind == session.KindSessionEnd {
				return nil
			}
		}
	}
}

// unwrapSlowPathFrame peels the TPKT/X.224/MCS envelope a slow-path server
// PDU carries down to the share-control payload session.Machine.Process
// expects, the same layering conn.Machine strips on the way in during the
// connection sequence (MS-RDPBCGR 2.2.8.1.1.1.1).
func unwrapSlowPathFrame(frame []byte) ([]byte, error) {
	r := buffer.NewReader(frame)
	var t tpkt.Frame
	if err := t.Decode(r); err != nil {
		return nil, err
	}

	xr := buffer.NewReader(t.Payload)
	var d x224.Data
	if err := d.Decode(xr); err != nil {
		return nil, err
	}

	mr := buffer.NewReader(d.UserData)
	var ind mcs.ServerSendDataIndication
	if err := ind.Deserialize(mr); err != nil {
		return nil, err
	}
	return mr.CopyBytes(mr.Len())
}

func extractRect(s *session.PixelSurface, r session.Rect) []byte {
	out := make([]byte, 0, r.Width*r.Height*4)
	for y := 0; y < r.Height; y++ {
		rowStart := (r.Y+y)*s.Stride + r.X*4
		rowEnd := rowStart + r.Width*4
		if rowStart < 0 || rowEnd > len(s.Pix) {
			break
		}
		out = append(out, s.Pix[rowStart:rowEnd]...)
	}
	return out
}

// pumpInput converts browser-originated inputMessage values into
// pdu.InputEvent and writes the packed fast-path input PDU(s) to wc,
// draining h.inbound until ctx is canceled.
func pumpInput(ctx context.Context, wc *wireConn, enc *input.Encoder, h *hub) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.inbound:
			ev, ok := toInputEvent(msg)
			if !ok {
				continue
			}
			w := buffer.NewWriter(32)
			if _, err := enc.Pack([]input.Event{ev}, w); err != nil {
				continue
			}
			_ = wc.Write(ctx, w.Bytes())
		}
	}
}

func toInputEvent(msg inputMessage) (pdu.InputEvent, bool) {
	switch msg.Type {
	case "mouse":
		return pdu.NewMouseEvent(msg.Flags, msg.X, msg.Y), true
	case "key":
		return pdu.NewKeyboardEvent(uint8(msg.Flags), msg.KeyCode), true
	case "unicode":
		return pdu.NewUnicodeKeyboardEvent(uint8(msg.Flags), msg.UnicodeVal), true
	case "sync":
		return pdu.NewSynchronizeEvent(uint8(msg.Flags)), true
	default:
		return pdu.InputEvent{}, false
	}
}
