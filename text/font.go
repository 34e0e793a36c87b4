package text

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
)

// Font is a parsed font usable for shaping and rasterization.
type Font struct {
	family string

	// outlines is used for metrics and glyph outlines.
	outlines *sfnt.Font

	// shaping is read-only and safe for concurrent use, unlike font.Face.
	shaping *font.Font

	mu  sync.Mutex
	buf sfnt.Buffer
}

// parseFont parses data with both font parsers. family overrides the name
// recorded in the font when non-empty.
func parseFont(data []byte, family string) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	outlines, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}

	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}

	f := &Font{
		family:   family,
		outlines: outlines,
		shaping:  face.Font,
	}
	if f.family == "" {
		name, err := outlines.Name(&f.buf, sfnt.NameIDFamily)
		if err != nil || name == "" {
			return nil, fmt.Errorf("%w: missing family name", ErrInvalidFont)
		}
		f.family = name
	}
	return f, nil
}

// Family returns the family name the font is registered under.
func (f *Font) Family() string {
	return f.family
}

// Metrics returns the ascent and descent for a font size, both positive and
// in the same unit as size.
func (f *Font) Metrics(size float32) (ascent, descent float32) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.outlines.Metrics(&f.buf, toFixed(size), xfont.HintingNone)
	if err != nil {
		return size * 0.8, size * 0.2
	}
	return fromFixed(m.Ascent), fromFixed(m.Descent)
}
