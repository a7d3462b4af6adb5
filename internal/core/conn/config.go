package conn

import "github.com/rcarmo/go-rdp-core/internal/core/rdperr"

// Config holds everything the connection sequence needs to negotiate and
// settle on with the server. The core only validates structure here (types,
// ranges, non-empty required fields); policy choices such as whether NLA is
// mandatory for a given deployment belong to the caller.
type Config struct {
	ClientName    string
	DesktopWidth  uint16
	DesktopHeight uint16
	ColorDepth    int

	Domain   string
	Username string
	Password string

	ChannelNames []string

	RequestNLA bool
	EnableRFX  bool
	RemoteApp  bool
}

// Validate checks structural invariants: non-zero desktop dimensions, a
// color depth the GCC core data block can express, and a client name short
// enough for TS_UD_CS_CORE's fixed-width field.
func (c *Config) Validate() error {
	if c.DesktopWidth == 0 || c.DesktopHeight == 0 {
		return &rdperr.InvalidField{Name: "conn.config.desktopSize", Reason: "width and height must be non-zero"}
	}
	switch c.ColorDepth {
	case 8, 15, 16, 24, 32:
	default:
		return &rdperr.InvalidField{Name: "conn.config.colorDepth", Reason: "must be one of 8, 15, 16, 24, 32"}
	}
	if len(c.ClientName) > 15 {
		return &rdperr.InvalidField{Name: "conn.config.clientName", Reason: "must fit in 15 characters"}
	}
	for _, name := range c.ChannelNames {
		if len(name) == 0 || len(name) > 7 {
			return &rdperr.InvalidField{Name: "conn.config.channelNames", Reason: "each name must be 1-7 characters"}
		}
	}
	return nil
}
