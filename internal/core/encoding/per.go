package encoding

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// PerReadChoice reads a PER CHOICE index octet.
func PerReadChoice(r *buffer.Reader) (uint8, error) {
	return r.Uint8()
}

// PerReadLength reads a PER length determinant in 1 or 2-byte form.
func PerReadLength(r *buffer.Reader) (int, error) {
	octet, err := r.Uint8()
	if err != nil {
		return 0, err
	}
	if octet&0x80 != 0x80 {
		return int(octet), nil
	}

	octet &^= 0x80
	size := int(octet) << 8

	octet, err = r.Uint8()
	if err != nil {
		return 0, err
	}
	return size + int(octet), nil
}

// PerReadObjectIdentifier reads a PER-encoded T.125 object identifier and
// reports whether it matches oid.
func PerReadObjectIdentifier(oid [6]byte, r *buffer.Reader) (bool, error) {
	size, err := PerReadLength(r)
	if err != nil {
		return false, err
	}
	if size != 5 {
		return false, nil
	}

	t12, err := r.Uint8()
	if err != nil {
		return false, err
	}

	got := [6]byte{t12 >> 4, t12 & 0x0f}
	for i := 2; i <= 5; i++ {
		got[i], err = r.Uint8()
		if err != nil {
			return false, err
		}
	}

	return got == oid, nil
}

// PerReadInteger16 reads a raw 16-bit integer and adds back minimum.
func PerReadInteger16(minimum uint16, r *buffer.Reader) (uint16, error) {
	num, err := r.Uint16BE()
	if err != nil {
		return 0, err
	}
	return num + minimum, nil
}

// PerReadInteger reads a PER INTEGER preceded by a length determinant of
// 1, 2 or 4 bytes.
func PerReadInteger(r *buffer.Reader) (int, error) {
	size, err := PerReadLength(r)
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
	case 4:
		v, err := r.Uint32BE()
		return int(v), err
	default:
		return 0, &rdperr.InvalidField{Name: "per.integer.length", Reason: "bad integer length"}
	}
}

// PerReadEnumerates reads a PER ENUMERATED value (a single octet).
func PerReadEnumerates(r *buffer.Reader) (uint8, error) {
	return r.Uint8()
}

// PerReadNumberOfSet reads the count octet preceding a PER SET OF.
func PerReadNumberOfSet(r *buffer.Reader) (uint8, error) {
	return r.Uint8()
}

// PerReadOctetStream reads a length-prefixed octet stream and reports
// whether it matches octetStream exactly (minValue is subtracted from the
// encoded length per T.125 channel-ID style fields).
func PerReadOctetStream(octetStream []byte, minValue int, r *buffer.Reader) (bool, error) {
	length, err := PerReadLength(r)
	if err != nil {
		return false, err
	}

	size := length + minValue
	if size != len(octetStream) {
		return false, nil
	}

	for i := 0; i < size; i++ {
		c, err := r.Uint8()
		if err != nil {
			return false, err
		}
		if octetStream[i] != c {
			return false, nil
		}
	}

	return true, nil
}

// PerWriteChoice writes a PER CHOICE index octet.
func PerWriteChoice(choice uint8, w *buffer.Writer) error {
	return w.WriteUint8(choice)
}

// PerWriteObjectIdentifier writes a T.125 object identifier in PER form.
func PerWriteObjectIdentifier(oid [6]byte, w *buffer.Writer) error {
	if err := PerWriteLength(5, w); err != nil {
		return err
	}
	return w.WriteBytes([]byte{
		(oid[0] << 4) | (oid[1] & 0x0f),
		oid[2],
		oid[3],
		oid[4],
		oid[5],
	})
}

// PerWriteLength writes a PER length determinant, using the 2-byte form
// with the high bit set once value exceeds 0x7f.
func PerWriteLength(value uint16, w *buffer.Writer) error {
	if value > 0x7f {
		return w.WriteUint16BE(value | 0x8000)
	}
	return w.WriteUint8(uint8(value))
}

// PerWriteSelection writes a PER optional-field selection bitmask octet.
func PerWriteSelection(selection uint8, w *buffer.Writer) error {
	return w.WriteUint8(selection)
}

// PerWriteNumericString writes a PER NumericString, packing decimal digit
// pairs into single octets as T.125 requires.
func PerWriteNumericString(nStr string, minValue int, w *buffer.Writer) error {
	length := len(nStr)
	mLength := minValue
	if length-minValue >= 0 {
		mLength = length - minValue
	}

	result := make([]byte, 0, mLength)
	for i := 0; i < length; i += 2 {
		c1 := nStr[i]
		c2 := byte(0x30)
		if i+1 < length {
			c2 = nStr[i+1]
		}
		c1 = (c1 - 0x30) % 10
		c2 = (c2 - 0x30) % 10
		result = append(result, (c1<<4)|c2)
	}

	if err := PerWriteLength(uint16(mLength), w); err != nil {
		return err
	}
	return w.WriteBytes(result)
}

// PerWritePadding writes length zero bytes.
func PerWritePadding(length int, w *buffer.Writer) error {
	return w.WriteZeros(length)
}

// PerWriteNumberOfSet writes the count octet preceding a PER SET OF.
func PerWriteNumberOfSet(numberOfSet uint8, w *buffer.Writer) error {
	return w.WriteUint8(numberOfSet)
}

// PerWriteOctetStream writes a length-prefixed octet stream, where the
// encoded length is len(oStr)-minValue.
func PerWriteOctetStream(oStr string, minValue int, w *buffer.Writer) error {
	length := len(oStr)
	mLength := minValue
	if length-minValue >= 0 {
		mLength = length - minValue
	}

	if err := PerWriteLength(uint16(mLength), w); err != nil {
		return err
	}
	return w.WriteBytes([]byte(oStr))
}

// PerWriteInteger writes a PER INTEGER using the smallest sufficient width
// (1, 2 or 4 bytes), each preceded by its length determinant.
func PerWriteInteger(value int, w *buffer.Writer) error {
	switch {
	case value <= 0xff:
		if err := PerWriteLength(1, w); err != nil {
			return err
		}
		return w.WriteUint8(uint8(value))
	case value <= 0xffff:
		if err := PerWriteLength(2, w); err != nil {
			return err
		}
		return w.WriteUint16BE(uint16(value))
	default:
		if err := PerWriteLength(4, w); err != nil {
			return err
		}
		return w.WriteUint32BE(uint32(value))
	}
}

// PerWriteInteger16 writes a raw 16-bit integer after subtracting minimum.
func PerWriteInteger16(value, minimum uint16, w *buffer.Writer) error {
	return w.WriteUint16BE(value - minimum)
}
