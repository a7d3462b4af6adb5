// Package encoding provides the ASN.1 BER and T.125 PER primitives used to
// encode/decode the MCS and GCC layers, restated over buffer.Reader/Writer
// instead of io.Reader/io.Writer so the whole codec stack stays allocation
// and I/O free.
package encoding

// ASN.1 class constants.
const (
	ClassUniversal   uint8 = 0x00
	ClassApplication uint8 = 0x40
)

// ASN.1 primitive/constructed constants.
const (
	PCPrimitive uint8 = 0x00
	PCConstruct uint8 = 0x20
)

// ASN.1 tag constants.
const (
	TagMask        uint8 = 0x1F
	TagBoolean     uint8 = 0x01
	TagInteger     uint8 = 0x02
	TagOctetString uint8 = 0x04
	TagEnumerated  uint8 = 0x0A
	TagSequence    uint8 = 0x10
)
