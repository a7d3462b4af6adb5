package main

import (
	"encoding/base64"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rcarmo/go-rdp-core/internal/core/session"
	"github.com/rcarmo/go-rdp-core/internal/corelog"
)

// frameEvent is one session.Output translated into the browser-facing wire
// shape: a flat, self-describing JSON object rather than a tagged union of
// Go structs, the same simplification the teacher's websocket handler makes
// by shipping PDU bytes straight through to a JS client instead of a typed
// protocol.
type frameEvent struct {
	Type       string `json:"type"`
	X          int    `json:"x,omitempty"`
	Y          int    `json:"y,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	PixelsB64  string `json:"pixelsBase64,omitempty"`
	PointerKnd int    `json:"pointerKind,omitempty"`
	CacheIdx   int    `json:"cacheIndex,omitempty"`
	Reason     string `json:"reason,omitempty"`
	EndCode    uint32 `json:"endCode,omitempty"`
}

// inputMessage is a browser-originated input event; exactly one of the
// type-specific field groups is meaningful, selected by Type.
type inputMessage struct {
	Type       string `json:"type"`
	Flags      uint16 `json:"flags"`
	X          uint16 `json:"x"`
	Y          uint16 `json:"y"`
	KeyCode    uint8  `json:"keyCode"`
	UnicodeVal uint16 `json:"unicode"`
}

// hub fans session.Output values out to every connected viewer and funnels
// inputMessage values from any viewer back to the single RDP session, the
// same upgrade-then-pump shape as the teacher's connect.go handler.
type hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	inbound chan inputMessage
	sink    corelog.Sink
}

func newHub(sink corelog.Sink) *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
		inbound: make(chan inputMessage, 64),
		sink:    sink,
	}
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		corelog.Emit(h.sink, corelog.Diagnostic{Level: corelog.LevelWarn, Phase: "hub", Message: err.Error()})
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		var msg inputMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		select {
		case h.inbound <- msg:
		default:
		}
	}
}

func (h *hub) broadcast(ev frameEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteJSON(ev); err != nil {
			c.Close()
			delete(h.clients, c)
		}
	}
}

// publish translates one batch of session.Output values into frameEvents
// and broadcasts each to every connected viewer.
func (h *hub) publish(outputs []session.Output) {
	for _, o := range outputs {
		switch o.Kind {
		case session.KindPixelUpdate:
			h.broadcast(frameEvent{
				Type: "pixel", X: o.Rect.X, Y: o.Rect.Y,
				Width: o.Rect.Width, Height: o.Rect.Height,
				Reason: o.Reason,
			})
		case session.KindPointer:
			h.broadcast(frameEvent{
				Type: "pointer", X: o.Pointer.X, Y: o.Pointer.Y,
				PointerKnd: int(o.Pointer.Kind), CacheIdx: int(o.Pointer.CacheIndex),
			})
		case session.KindBeep:
			h.broadcast(frameEvent{Type: "beep"})
		case session.KindSessionEnd:
			h.broadcast(frameEvent{Type: "sessionEnd", Reason: o.Reason, EndCode: o.EndCode})
		}
	}
}

// publishSurfacePatch sends the raw pixel bytes for one pixel-update rect,
// base64-encoded, as a follow-up message a viewer pairs with the preceding
// "pixel" frameEvent by rect coordinates.
func (h *hub) publishSurfacePatch(rect session.Rect, pix []byte) {
	h.broadcast(frameEvent{
		Type: "pixelData", X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height,
		PixelsB64: base64.StdEncoding.EncodeToString(pix),
	})
}
