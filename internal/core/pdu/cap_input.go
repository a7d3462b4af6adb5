package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// InputCapabilitySet is the TS_INPUT_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.6).
type InputCapabilitySet struct {
	InputFlags          uint16
	KeyboardLayout      uint32
	KeyboardType        uint32
	KeyboardSubType     uint32
	KeyboardFunctionKey uint32
	ImeFileName         [64]byte
}

// NewInputCapabilitySet creates an Input Capability Set with default client values.
func NewInputCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeInput,
		InputCapabilitySet: &InputCapabilitySet{
			InputFlags:          0x0001 | 0x0004 | 0x0010 | 0x0020, // SCANCODES, MOUSEX, UNICODE, FASTPATH_INPUT2
			KeyboardLayout:      0x00000409,                        // US
			KeyboardType:        0x00000004,                        // IBM enhanced
			KeyboardFunctionKey: 12,
		},
	}
}

// Encode writes the capability set to wire format.
func (s *InputCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(s.InputFlags); err != nil {
		return err
	}
	if err := w.WriteUint16LE(0); err != nil { // padding
		return err
	}
	for _, v := range []uint32{s.KeyboardLayout, s.KeyboardType, s.KeyboardSubType, s.KeyboardFunctionKey} {
		if err := w.WriteUint32LE(v); err != nil {
			return err
		}
	}
	return w.WriteBytes(s.ImeFileName[:])
}

// Decode reads the capability set from wire format.
func (s *InputCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.InputFlags, err = r.Uint16LE(); err != nil {
		return err
	}
	if err = r.Skip(2); err != nil { // padding
		return err
	}
	if s.KeyboardLayout, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.KeyboardType, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.KeyboardSubType, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.KeyboardFunctionKey, err = r.Uint32LE(); err != nil {
		return err
	}
	ime, err := r.Bytes(64)
	if err != nil {
		return err
	}
	copy(s.ImeFileName[:], ime)
	return nil
}
