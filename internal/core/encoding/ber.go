package encoding

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// BerReadApplicationTag reads an [APPLICATION n] identifier octet and
// returns the tag number n.
func BerReadApplicationTag(r *buffer.Reader) (uint8, error) {
	identifier, err := r.Uint8()
	if err != nil {
		return 0, err
	}
	if identifier != (ClassApplication|PCConstruct)|TagMask {
		return 0, &rdperr.InvalidField{Name: "ber.applicationTag", Reason: "invalid identifier octet"}
	}
	return r.Uint8()
}

// BerReadLength reads a BER length in short or 1/2-byte long form.
func BerReadLength(r *buffer.Reader) (uint16, error) {
	size, err := r.Uint8()
	if err != nil {
		return 0, err
	}
	if size&0x80 == 0 {
		return uint16(size), nil
	}

	size &^= 0x80
	switch size {
	case 1:
		b, err := r.Uint8()
		if err != nil {
			return 0, err
		}
		return uint16(b), nil
	case 2:
		return r.Uint16BE()
	default:
		return 0, &rdperr.InvalidField{Name: "ber.length", Reason: "long form must be 1 or 2 bytes"}
	}
}

func berPC(pc bool) uint8 {
	if pc {
		return PCConstruct
	}
	return PCPrimitive
}

// BerReadUniversalTag reports whether the next identifier octet matches the
// given universal tag/constructedness.
func BerReadUniversalTag(tag uint8, pc bool, r *buffer.Reader) (bool, error) {
	b, err := r.Uint8()
	if err != nil {
		return false, err
	}
	return b == (ClassUniversal|berPC(pc))|(TagMask&tag), nil
}

// BerReadEnumerated reads a BER ENUMERATED value (always 1 byte).
func BerReadEnumerated(r *buffer.Reader) (uint8, error) {
	ok, err := BerReadUniversalTag(TagEnumerated, false, r)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &rdperr.InvalidField{Name: "ber.enumerated", Reason: "wrong tag"}
	}
	length, err := BerReadLength(r)
	if err != nil {
		return 0, err
	}
	if length != 1 {
		return 0, &rdperr.InvalidField{Name: "ber.enumerated.length", Reason: "expected length 1"}
	}
	return r.Uint8()
}

// BerReadInteger reads a BER INTEGER of 1-4 bytes (big-endian, unsigned).
func BerReadInteger(r *buffer.Reader) (int, error) {
	ok, err := BerReadUniversalTag(TagInteger, false, r)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &rdperr.InvalidField{Name: "ber.integer", Reason: "wrong tag"}
	}
	size, err := BerReadLength(r)
	if err != nil {
		return 0, err
	}
	switch size {
	case 1:
		v, err := r.Uint8()
		return int(v), err
	case 2:
		v, err := r.Uint16BE()
		return int(v), err
	case 3:
		hi, err := r.Uint8()
		if err != nil {
			return 0, err
		}
		lo, err := r.Uint16BE()
		if err != nil {
			return 0, err
		}
		return int(hi)<<16 + int(lo), nil
	case 4:
		v, err := r.Uint32BE()
		return int(v), err
	default:
		return 0, &rdperr.InvalidField{Name: "ber.integer.length", Reason: "wrong size"}
	}
}

// BerReadInteger16 reads a BER INTEGER known to be exactly 2 bytes.
func BerReadInteger16(r *buffer.Reader) (uint16, error) {
	ok, err := BerReadUniversalTag(TagInteger, false, r)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &rdperr.InvalidField{Name: "ber.integer16", Reason: "wrong tag"}
	}
	size, err := BerReadLength(r)
	if err != nil {
		return 0, err
	}
	if size != 2 {
		return 0, &rdperr.InvalidField{Name: "ber.integer16.length", Reason: "expected 2-byte integer"}
	}
	return r.Uint16BE()
}

// BerWriteLength writes a BER length in the shortest valid form.
func BerWriteLength(size int, w *buffer.Writer) error {
	switch {
	case size > 0xff:
		if err := w.WriteUint8(0x82); err != nil {
			return err
		}
		return w.WriteUint16BE(uint16(size))
	case size > 0x7f:
		if err := w.WriteUint8(0x81); err != nil {
			return err
		}
		return w.WriteUint8(uint8(size))
	default:
		return w.WriteUint8(uint8(size))
	}
}

// BerWriteBoolean writes a BER BOOLEAN.
func BerWriteBoolean(b bool, w *buffer.Writer) error {
	if err := w.WriteUint8(TagBoolean); err != nil {
		return err
	}
	if err := BerWriteLength(1, w); err != nil {
		return err
	}
	v := uint8(0)
	if b {
		v = 0xff
	}
	return w.WriteUint8(v)
}

// BerWriteInteger writes a BER INTEGER using the smallest sufficient width.
func BerWriteInteger(n int, w *buffer.Writer) error {
	if err := w.WriteUint8(TagInteger); err != nil {
		return err
	}
	switch {
	case n <= 0xff:
		if err := BerWriteLength(1, w); err != nil {
			return err
		}
		return w.WriteUint8(uint8(n))
	case n <= 0xffff:
		if err := BerWriteLength(2, w); err != nil {
			return err
		}
		return w.WriteUint16BE(uint16(n))
	default:
		if err := BerWriteLength(4, w); err != nil {
			return err
		}
		return w.WriteUint32BE(uint32(n))
	}
}

// BerWriteInteger16 writes a BER INTEGER known to be exactly 2 bytes.
func BerWriteInteger16(n uint16, w *buffer.Writer) error {
	if err := w.WriteUint8(TagInteger); err != nil {
		return err
	}
	if err := BerWriteLength(2, w); err != nil {
		return err
	}
	return w.WriteUint16BE(n)
}

// BerWriteOctetString writes a BER OCTET STRING.
func BerWriteOctetString(str []byte, w *buffer.Writer) error {
	if err := w.WriteUint8(TagOctetString); err != nil {
		return err
	}
	if err := BerWriteLength(len(str), w); err != nil {
		return err
	}
	return w.WriteBytes(str)
}

// BerWriteSequence writes a BER SEQUENCE wrapping already-encoded content.
func BerWriteSequence(data []byte, w *buffer.Writer) error {
	if err := w.WriteUint8(ClassUniversal | PCConstruct | TagSequence); err != nil {
		return err
	}
	if err := BerWriteLength(len(data), w); err != nil {
		return err
	}
	return w.WriteBytes(data)
}

// BerWriteApplicationTag writes an [APPLICATION tag] identifier followed by
// a BER length for size bytes of content that follow.
func BerWriteApplicationTag(tag uint8, size int, w *buffer.Writer) error {
	if tag > 30 {
		if err := w.WriteUint8(0x7f); err != nil {
			return err
		}
		if err := w.WriteUint8(tag); err != nil {
			return err
		}
	} else {
		if err := w.WriteUint8(tag); err != nil {
			return err
		}
	}
	return BerWriteLength(size, w)
}
