package session

import "context"

// ChannelHandler consumes inbound virtual-channel PDUs routed to a
// non-graphics channel (clipboard, device redirection, dynamic virtual
// channels) and may produce outbound ones in response. session.Machine
// neither routes nor interprets virtual-channel data; a caller that uses a
// ChannelHandler feeds it channel PDUs itself.
type ChannelHandler interface {
	ChannelName() string
	HandleChannelData(ctx context.Context, data []byte) (response []byte, err error)
}

// Presenter receives the Outputs a Process call produces and is where a
// demonstration binary turns pixel updates into window repaints, pointer
// updates into cursor changes, and beeps into an actual sound. The core
// never calls this itself; it is purely the shape a caller's dispatch loop
// matches against Output.Kind.
type Presenter interface {
	PixelsChanged(surface *PixelSurface, rect Rect)
	PointerChanged(p PointerUpdate)
	Beep()
	SessionEnded(reason string, code uint32)
}
