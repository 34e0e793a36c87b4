package text

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Bitmap is a rasterized glyph. Left and Top locate the top-left pixel of
// Mask relative to the pen position on the baseline.
type Bitmap struct {
	Mask      *image.Alpha
	Left, Top int
}

// Empty reports whether the glyph has no visible pixels, as for a space.
func (b Bitmap) Empty() bool {
	return b.Mask == nil
}

// Rasterize renders glyph id at ppem pixels per em.
func (f *Font) Rasterize(id uint16, ppem float32) (Bitmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	gid := sfnt.GlyphIndex(id)
	size := toFixed(ppem)

	bounds, _, err := f.outlines.GlyphBounds(&f.buf, gid, size, xfont.HintingNone)
	if err != nil {
		return Bitmap{}, fmt.Errorf("text: glyph %d bounds: %w", id, err)
	}

	minX := bounds.Min.X.Floor()
	minY := bounds.Min.Y.Floor()
	maxX := bounds.Max.X.Ceil()
	maxY := bounds.Max.Y.Ceil()
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return Bitmap{}, nil
	}

	segments, err := f.outlines.LoadGlyph(&f.buf, gid, size, nil)
	if err != nil {
		return Bitmap{}, fmt.Errorf("text: glyph %d outline: %w", id, err)
	}

	// Outline coordinates are relative to the pen position, y down.
	ox := float32(minX)
	oy := float32(minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 - ox, float32(p.Y)/64 - oy
	}

	r := vector.NewRasterizer(w, h)
	r.DrawOp = draw.Src
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			x, y := pt(seg.Args[0])
			r.MoveTo(x, y)
		case sfnt.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			r.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			x, y := pt(seg.Args[1])
			r.QuadTo(bx, by, x, y)
		case sfnt.SegmentOpCubeTo:
			b1x, b1y := pt(seg.Args[0])
			b2x, b2y := pt(seg.Args[1])
			x, y := pt(seg.Args[2])
			r.CubeTo(b1x, b1y, b2x, b2y, x, y)
		}
	}
	r.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return Bitmap{Mask: mask, Left: minX, Top: minY}, nil
}

// glyphSizeKey quantizes a pixel size to 1/64 px.
func glyphSizeKey(ppem float32) uint32 {
	return uint32(math.Round(float64(ppem) * 64))
}
