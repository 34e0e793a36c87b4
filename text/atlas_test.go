package text

import (
	"image"
	"testing"
)

func solidBitmap(w, h int) Bitmap {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range m.Pix {
		m.Pix[i] = 0xff
	}
	return Bitmap{Mask: m, Left: 1, Top: -h}
}

func TestAtlas_InsertAndLookup(t *testing.T) {
	a := NewAtlas(64, 64)
	key := GlyphKey{ID: 7, Size: 20 * 64}

	g, ok := a.Insert(key, solidBitmap(10, 12))
	if !ok {
		t.Fatal("Insert() failed on empty atlas")
	}
	if g.Rect.Dx() != 10 || g.Rect.Dy() != 12 || g.Left != 1 || g.Top != -12 {
		t.Errorf("Insert() = %+v", g)
	}

	got, ok := a.Lookup(key)
	if !ok || got != g {
		t.Errorf("Lookup() = %+v, %v", got, ok)
	}

	// Copied pixels land at the allocated position.
	if a.Pixels()[g.Rect.Min.Y*64+g.Rect.Min.X] != 0xff {
		t.Error("glyph pixels not copied")
	}

	dirty, ok := a.TakeDirty()
	if !ok || dirty != g.Rect {
		t.Errorf("TakeDirty() = %v, %v", dirty, ok)
	}
	if _, ok := a.TakeDirty(); ok {
		t.Error("atlas still dirty after TakeDirty")
	}
}

func TestAtlas_NoOverlap(t *testing.T) {
	a := NewAtlas(32, 32)
	var rects []image.Rectangle
	for i := range 20 {
		g, ok := a.Insert(GlyphKey{ID: uint16(i)}, solidBitmap(5+i%3, 4+i%4))
		if !ok {
			break
		}
		rects = append(rects, g.Rect)
	}
	if len(rects) < 4 {
		t.Fatalf("only %d glyphs fit", len(rects))
	}
	for i := range rects {
		if !rects[i].In(image.Rect(0, 0, 32, 32)) {
			t.Errorf("rect %v outside atlas", rects[i])
		}
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Overlaps(rects[j]) {
				t.Errorf("rects %v and %v overlap", rects[i], rects[j])
			}
		}
	}
}

func TestAtlas_FullAndReset(t *testing.T) {
	a := NewAtlas(16, 16)
	if _, ok := a.Insert(GlyphKey{ID: 1}, solidBitmap(20, 4)); ok {
		t.Error("oversized glyph accepted")
	}
	if _, ok := a.Insert(GlyphKey{ID: 2}, solidBitmap(15, 15)); !ok {
		t.Fatal("fitting glyph rejected")
	}
	if _, ok := a.Insert(GlyphKey{ID: 3}, solidBitmap(8, 8)); ok {
		t.Error("insert into full atlas succeeded")
	}

	a.Reset()
	if a.Len() != 0 || a.Utilization() != 0 {
		t.Errorf("Reset() left %d glyphs, utilization %v", a.Len(), a.Utilization())
	}
	if r, ok := a.TakeDirty(); !ok || r != image.Rect(0, 0, 16, 16) {
		t.Errorf("Reset() dirty = %v, %v", r, ok)
	}
}

func TestAtlas_EmptyGlyph(t *testing.T) {
	a := NewAtlas(16, 16)
	g, ok := a.Insert(GlyphKey{ID: 3}, Bitmap{})
	if !ok || !g.Rect.Empty() {
		t.Errorf("Insert(empty) = %+v, %v", g, ok)
	}
	if _, ok := a.TakeDirty(); ok {
		t.Error("empty glyph marked atlas dirty")
	}
}

func TestFont_Rasterize(t *testing.T) {
	s := newTestSystem(t)
	f := s.Font(DefaultFamily)
	p := s.Shape("A ", DefaultFamily, 32, 40)
	glyphs := p.Lines[0].Glyphs
	if len(glyphs) != 2 {
		t.Fatalf("got %d glyphs, want 2", len(glyphs))
	}

	b, err := f.Rasterize(glyphs[0].ID, 32)
	if err != nil {
		t.Fatalf("Rasterize(A) error = %v", err)
	}
	if b.Empty() {
		t.Fatal("Rasterize(A) produced no pixels")
	}
	if b.Top >= 0 {
		t.Errorf("glyph top %d must be above the baseline", b.Top)
	}
	covered := 0
	for _, v := range b.Mask.Pix {
		if v > 0 {
			covered++
		}
	}
	if covered == 0 {
		t.Error("mask is blank")
	}

	space, err := f.Rasterize(glyphs[1].ID, 32)
	if err != nil {
		t.Fatalf("Rasterize(space) error = %v", err)
	}
	if !space.Empty() {
		t.Error("space must rasterize to an empty bitmap")
	}
}
