package session

// OutputKind discriminates the variant carried by an Output.
type OutputKind int

const (
	// KindWriteback means the caller must send Writeback's bytes back to
	// the server verbatim. Machine.Process does not produce it; the machine
	// sends no frame acknowledgements.
	KindWriteback OutputKind = iota
	// KindPixelUpdate means Rect of surface pixels changed; Reason names
	// the update that caused it ("bitmap", "palette", ...).
	KindPixelUpdate
	// KindPointer means the cursor shape or position changed.
	KindPointer
	// KindBeep means the server requested an audible bell.
	KindBeep
	// KindSessionEnd means the session reached a terminal state; Reason
	// carries the human-readable cause and EndCode the server's wire code
	// where one exists. Every later Process call returns SessionTerminated.
	KindSessionEnd
)

// PointerKind discriminates the variant carried by a PointerUpdate.
type PointerKind int

const (
	PointerHidden PointerKind = iota
	PointerDefault
	PointerPosition
	PointerColor
	PointerCached
)

// PointerUpdate describes a cursor shape or position change (MS-RDPBCGR
// 2.2.9.1.1.4, 2.2.9.1.2.1.6-9).
type PointerUpdate struct {
	Kind               PointerKind
	X, Y               int
	CacheIndex         uint16
	HotspotX, HotspotY int
	Width, Height      int
	AndMask, XorMask   []byte
}

// Output is one item the session machine produces while processing a
// single Process call. Only the fields matching Kind are meaningful.
type Output struct {
	Kind      OutputKind
	Writeback []byte
	Rect      Rect
	Reason    string
	Pointer   PointerUpdate
	EndCode   uint32
}
