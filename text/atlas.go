package text

import "image"

// DefaultAtlasSize is the width and height of a new glyph atlas.
const DefaultAtlasSize = 1024

// GlyphKey identifies a rasterized glyph.
type GlyphKey struct {
	Font *Font
	ID   uint16
	Size uint32 // pixels per em in 1/64 px
}

// NewGlyphKey returns the key of glyph id of f at ppem pixels per em.
func NewGlyphKey(f *Font, id uint16, ppem float32) GlyphKey {
	return GlyphKey{Font: f, ID: id, Size: glyphSizeKey(ppem)}
}

// AtlasGlyph locates a glyph inside the atlas.
type AtlasGlyph struct {
	// Rect is the glyph area in atlas pixels. It is empty for glyphs
	// without pixels.
	Rect image.Rectangle

	Left, Top int
}

// Atlas packs glyph masks into a single-channel image using horizontal
// shelves. Each item is placed left to right on the first shelf with room;
// a new shelf is started below the last one when none fits.
type Atlas struct {
	width   int
	height  int
	padding int
	shelves []shelf
	pix     []byte

	glyphs map[GlyphKey]AtlasGlyph
	dirty  image.Rectangle

	usedArea int
}

// shelf represents a horizontal strip in the atlas.
type shelf struct {
	y      int // Y position of shelf top
	height int // Height of the shelf (tallest item so far)
	x      int // Current X position (next free slot)
}

// NewAtlas returns an empty atlas of the given size.
func NewAtlas(width, height int) *Atlas {
	return &Atlas{
		width:   width,
		height:  height,
		padding: 1,
		shelves: make([]shelf, 0, 16),
		pix:     make([]byte, width*height),
		glyphs:  make(map[GlyphKey]AtlasGlyph),
	}
}

// Size returns the atlas dimensions.
func (a *Atlas) Size() (width, height int) {
	return a.width, a.height
}

// Pixels returns the atlas contents, one byte per pixel, row-major.
func (a *Atlas) Pixels() []byte {
	return a.pix
}

// Lookup returns a glyph previously added with Insert.
func (a *Atlas) Lookup(key GlyphKey) (AtlasGlyph, bool) {
	g, ok := a.glyphs[key]
	return g, ok
}

// Insert copies a rasterized glyph into the atlas. It returns false when
// the atlas is full.
func (a *Atlas) Insert(key GlyphKey, b Bitmap) (AtlasGlyph, bool) {
	if b.Empty() {
		g := AtlasGlyph{Left: b.Left, Top: b.Top}
		a.glyphs[key] = g
		return g, true
	}

	w, h := b.Mask.Rect.Dx(), b.Mask.Rect.Dy()
	x, y, ok := a.allocate(w, h)
	if !ok {
		return AtlasGlyph{}, false
	}

	for row := range h {
		src := b.Mask.Pix[row*b.Mask.Stride : row*b.Mask.Stride+w]
		copy(a.pix[(y+row)*a.width+x:], src)
	}

	rect := image.Rect(x, y, x+w, y+h)
	a.dirty = a.dirty.Union(rect)

	g := AtlasGlyph{Rect: rect, Left: b.Left, Top: b.Top}
	a.glyphs[key] = g
	return g, true
}

// TakeDirty returns the region written since the last call and marks the
// atlas clean.
func (a *Atlas) TakeDirty() (image.Rectangle, bool) {
	r := a.dirty
	a.dirty = image.Rectangle{}
	return r, !r.Empty()
}

// allocate finds space for a rectangle of the given size.
func (a *Atlas) allocate(w, h int) (x, y int, ok bool) {
	paddedW := w + a.padding
	paddedH := h + a.padding

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.x+paddedW > a.width {
			continue
		}
		if h > s.height {
			// Only the last shelf can grow, and only if there is room below.
			if i != len(a.shelves)-1 || s.y+paddedH > a.height {
				continue
			}
			s.height = h
		}
		x, y = s.x, s.y
		s.x += paddedW
		a.usedArea += w * h
		return x, y, true
	}

	newY := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		newY = last.y + last.height + a.padding
	}
	if newY+paddedH > a.height || paddedW > a.width {
		return -1, -1, false
	}

	a.shelves = append(a.shelves, shelf{y: newY, height: h, x: paddedW})
	a.usedArea += w * h
	return 0, newY, true
}

// Len returns the number of glyphs in the atlas.
func (a *Atlas) Len() int {
	return len(a.glyphs)
}

// Utilization returns the fraction of atlas area covered by glyphs.
func (a *Atlas) Utilization() float64 {
	return float64(a.usedArea) / float64(a.width*a.height)
}

// Reset clears all allocations. The whole atlas is marked dirty.
func (a *Atlas) Reset() {
	a.shelves = a.shelves[:0]
	a.usedArea = 0
	clear(a.pix)
	clear(a.glyphs)
	a.dirty = image.Rect(0, 0, a.width, a.height)
}

// Grow doubles the atlas up to limit pixels per side. Glyphs keep their
// positions, so coordinates handed out earlier stay valid. The whole atlas
// is marked dirty. Grow returns false when the atlas cannot get larger.
func (a *Atlas) Grow(limit int) bool {
	w, h := min(a.width*2, limit), min(a.height*2, limit)
	if w <= a.width && h <= a.height {
		return false
	}
	pix := make([]byte, w*h)
	for row := range a.height {
		copy(pix[row*w:], a.pix[row*a.width:(row+1)*a.width])
	}
	a.width, a.height, a.pix = w, h, pix
	a.dirty = image.Rect(0, 0, w, h)
	return true
}
