package session

import "github.com/rcarmo/go-rdp-core/internal/core/rdperr"

// Rect is a pixel rectangle in surface coordinates, right/bottom exclusive.
type Rect struct {
	X, Y          int
	Width, Height int
}

// PixelSurface is the caller-owned RGBA framebuffer the session machine
// blits graphics updates into. It is exclusively borrowed for the duration
// of one Process call; the machine never retains a reference across calls.
type PixelSurface struct {
	Width, Height int
	Stride        int
	Pix           []byte
}

// NewPixelSurface allocates a zeroed top-down RGBA surface. Stride is
// width*4, the only stride Blit accepts: Blit rejects a surface with
// padded rows.
func NewPixelSurface(width, height int) *PixelSurface {
	stride := width * 4
	return &PixelSurface{
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    make([]byte, stride*height),
	}
}

// Blit copies top-down RGBA pixels into the surface at rect, clipping to
// surface bounds first. srcStride is the source's row width in bytes; pass
// 0 to mean rect.Width*4 (tightly packed). Rectangles are clipped, never
// rejected, since a server is free to send updates that touch the desktop
// edge the client hasn't resized for yet.
func (s *PixelSurface) Blit(rect Rect, pixels []byte, srcStride int) error {
	if s.Stride < s.Width*4 || s.Stride > s.Width*4 {
		return &rdperr.InvalidField{Name: "surface.stride", Reason: "must equal width * 4"}
	}
	if srcStride <= 0 {
		srcStride = rect.Width * 4
	}

	clipped := rect
	if clipped.X < 0 {
		clipped.Width += clipped.X
		clipped.X = 0
	}
	if clipped.Y < 0 {
		clipped.Height += clipped.Y
		clipped.Y = 0
	}
	if clipped.X+clipped.Width > s.Width {
		clipped.Width = s.Width - clipped.X
	}
	if clipped.Y+clipped.Height > s.Height {
		clipped.Height = s.Height - clipped.Y
	}
	if clipped.Width <= 0 || clipped.Height <= 0 {
		return nil
	}

	rowBytes := clipped.Width * 4
	srcOffsetX := (clipped.X - rect.X) * 4
	srcOffsetY := clipped.Y - rect.Y
	for row := 0; row < clipped.Height; row++ {
		srcStart := (srcOffsetY+row)*srcStride + srcOffsetX
		srcEnd := srcStart + rowBytes
		if srcStart < 0 || srcEnd > len(pixels) {
			return &rdperr.NotEnoughBytes{Needed: srcEnd, Available: len(pixels), Context: "surface.blit"}
		}
		dstStart := (clipped.Y+row)*s.Stride + clipped.X*4
		copy(s.Pix[dstStart:dstStart+rowBytes], pixels[srcStart:srcEnd])
	}
	return nil
}
