package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// OrderCapabilitySet is the TS_ORDER_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.3).
type OrderCapabilitySet struct {
	OrderFlags          uint16
	OrderSupport        [32]byte
	OrderSupportExFlags uint16
	DesktopSaveSize     uint32
}

// NewOrderCapabilitySet creates an Order Capability Set with default client values.
func NewOrderCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeOrder,
		OrderCapabilitySet: &OrderCapabilitySet{
			OrderFlags:      0x0002 | 0x0008, // NEGOTIATEORDERSUPPORT, ZEROBOUNDSDELTASSUPPORT
			DesktopSaveSize: 480 * 480,
		},
	}
}

// Encode writes the capability set to wire format.
func (s *OrderCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteZeros(16); err != nil { // terminalDescriptor
		return err
	}
	if err := w.WriteUint32LE(0); err != nil { // padding
		return err
	}
	for _, v := range []uint16{1, 20, 0, 1, 0} {
		// desktopSaveXGranularity, desktopSaveYGranularity, padding,
		// maximumOrderLevel = ORD_LEVEL_1_ORDERS, numberFonts
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	if err := w.WriteUint16LE(s.OrderFlags); err != nil {
		return err
	}
	if err := w.WriteBytes(s.OrderSupport[:]); err != nil {
		return err
	}
	if err := w.WriteUint16LE(0); err != nil { // textFlags
		return err
	}
	if err := w.WriteUint16LE(s.OrderSupportExFlags); err != nil {
		return err
	}
	if err := w.WriteUint32LE(0); err != nil { // padding
		return err
	}
	if err := w.WriteUint32LE(s.DesktopSaveSize); err != nil {
		return err
	}
	if err := w.WriteUint32LE(0); err != nil { // padding
		return err
	}
	if err := w.WriteUint16LE(0); err != nil { // textANSICodePage
		return err
	}
	return w.WriteUint16LE(0) // padding
}

// Decode reads the capability set from wire format.
func (s *OrderCapabilitySet) Decode(r *buffer.Reader) error {
	if err := r.Skip(16); err != nil { // terminalDescriptor
		return err
	}
	if err := r.Skip(4); err != nil { // padding
		return err
	}
	if err := r.Skip(10); err != nil { // save granularities, padding, maximumOrderLevel, numberFonts
		return err
	}
	var err error
	if s.OrderFlags, err = r.Uint16LE(); err != nil {
		return err
	}
	support, err := r.Bytes(32)
	if err != nil {
		return err
	}
	copy(s.OrderSupport[:], support)
	if err := r.Skip(2); err != nil { // textFlags
		return err
	}
	if s.OrderSupportExFlags, err = r.Uint16LE(); err != nil {
		return err
	}
	if err := r.Skip(4); err != nil { // padding
		return err
	}
	if s.DesktopSaveSize, err = r.Uint32LE(); err != nil {
		return err
	}
	return r.Skip(8) // padding, textANSICodePage, padding
}
