package conn

import "github.com/rcarmo/go-rdp-core/internal/core/pdu"

// buildClientCapabilitySets assembles the capability sets a client confirms
// in response to a Demand Active PDU. The base set mirrors what every
// Windows-compatible client advertises; RemoteFX support adds the surface
// commands and codec sets and raises the multifragment update limit so the
// server can send whole-frame updates in one burst.
func buildClientCapabilitySets(cfg *Config) []pdu.CapabilitySet {
	sets := []pdu.CapabilitySet{
		pdu.NewGeneralCapabilitySet(),
		pdu.NewBitmapCapabilitySet(cfg.DesktopWidth, cfg.DesktopHeight),
		pdu.NewOrderCapabilitySet(),
		pdu.NewBitmapCacheCapabilitySetRev2(),
		pdu.NewColorCacheCapabilitySet(),
		pdu.NewPointerCapabilitySet(),
		pdu.NewInputCapabilitySet(),
		pdu.NewBrushCapabilitySet(),
		pdu.NewGlyphCacheCapabilitySet(),
		pdu.NewOffscreenBitmapCacheCapabilitySet(),
		pdu.NewVirtualChannelCapabilitySet(),
		pdu.NewSoundCapabilitySet(),
		pdu.NewControlCapabilitySet(),
		pdu.NewWindowActivationCapabilitySet(),
		pdu.NewShareCapabilitySet(),
		pdu.NewFontCapabilitySet(),
		pdu.NewLargePointerCapabilitySet(),
		pdu.NewMultifragmentUpdateCapabilitySet(),
	}

	if cfg.EnableRFX {
		for i := range sets {
			if mf := sets[i].MultifragmentUpdateCapabilitySet; mf != nil {
				mf.MaxRequestSize = 0x200000
			}
		}
		sets = append(sets, pdu.NewSurfaceCommandsCapabilitySet(), pdu.NewBitmapCodecsCapabilitySet())
	}

	if cfg.RemoteApp {
		sets = append(sets, pdu.NewRailCapabilitySet(), pdu.NewWindowListCapabilitySet())
	}

	return sets
}

// buildConfirmActive builds the client's Confirm Active PDU in reply to the
// server's Demand Active, naming the same ShareID the server offered, the
// server channel (0x03EA) the Demand Active came from as OriginatorID, and
// the capability sets the client actually supports.
func buildConfirmActive(shareID uint32, userID uint16, cfg *Config) *pdu.ConfirmActivePDU {
	return &pdu.ConfirmActivePDU{
		Header:               pdu.ShareControlHeader{PDUSource: userID},
		ShareID:              shareID,
		OriginatorID:         0x03EA,
		SourceDescriptor:     "MSTSC",
		CombinedCapabilities: buildClientCapabilitySets(cfg),
	}
}
