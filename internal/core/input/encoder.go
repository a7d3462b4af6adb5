// Package input packs device events (keyboard, mouse, synchronize) into
// fast-path input PDUs. It is a thin batching layer: the wire-level event
// shapes already live in pdu.InputEvent and fastpath.InputEventPDU, pure
// and I/O-free in exactly the way this package needs, so Encoder only adds
// the batching policy — fill one PDU up to the fast-path size limit or the
// header's 15-event count, start a new one on overflow — that spec.md 4.F
// asks for.
package input

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/fastpath"
	"github.com/rcarmo/go-rdp-core/internal/core/pdu"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// Event is one device event ready to pack. It is an alias rather than a
// wrapper: callers build events with the pdu.NewXxxEvent constructors.
type Event = pdu.InputEvent

// headerOverhead is the worst case fast-path header size (action byte plus
// a 2-byte length field) this package reserves per PDU when deciding
// whether the next event still fits.
const headerOverhead = 3

// maxEventsPerPDU is the most events the fast-path header's 4-bit
// numEvents field can count.
const maxEventsPerPDU = 15

// Encoder packs events into one or more fast-path input event PDUs. It
// holds no state between Pack calls and allocates only the scratch buffer
// each PDU's Encode already needs.
type Encoder struct{}

// NewEncoder creates an input event encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Pack writes events to out as a sequence of fast-path input event PDUs,
// each carrying as many events as fit under fastpath.MaxPDULength (at most
// maxEventsPerPDU), and returns the number of PDUs written. An event larger
// than the limit on its own fails with InvalidField rather than silently
// truncating.
func (e *Encoder) Pack(events []Event, out *buffer.Writer) (int, error) {
	pduCount := 0
	for start := 0; start < len(events); {
		end, size := start, 0
		for end < len(events) && end-start < maxEventsPerPDU {
			s := events[end].Size()
			if size+s+headerOverhead > fastpath.MaxPDULength {
				break
			}
			size += s
			end++
		}
		if end == start {
			return pduCount, &rdperr.InvalidField{Name: "input.event", Reason: "event exceeds maximum fast-path PDU length"}
		}

		batch := fastpath.NewInputEventPDU(events[start:end])
		if err := batch.Encode(out); err != nil {
			return pduCount, err
		}
		pduCount++
		start = end
	}
	return pduCount, nil
}
