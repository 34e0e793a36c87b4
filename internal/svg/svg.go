package svg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/geometry"
)

// ErrInvalid is returned for input that is not an SVG document.
var ErrInvalid = errors.New("svg: invalid document")

// defaultSize is the viewport of a document with neither a size nor a
// viewBox.
const defaultSize = 100

// Document is a parsed SVG image.
type Document struct {
	width, height float32
	viewBox       core.Rectangle
	stretch       bool
	shapes        []shape
}

type shape struct {
	path      *geometry.Path
	transform matrix
	fill      *geometry.Fill
	stroke    *geometry.Stroke
}

// Size returns the viewport size in user units.
func (d *Document) Size() (width, height float32) { return d.width, d.height }

// Shapes returns the number of drawable shapes.
func (d *Document) Shapes() int { return len(d.shapes) }

// Parse reads a document from r.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no svg element", ErrInvalid)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return nil, fmt.Errorf("%w: root element <%s>", ErrInvalid, start.Name.Local)
		}
		d := &Document{}
		d.setViewport(start)
		p := parser{dec: dec, doc: d}
		if err := p.children(p.inherit(defaultStyle(), start)); err != nil {
			return nil, err
		}
		return d, nil
	}
}

func (d *Document) setViewport(root xml.StartElement) {
	w, hasW := parseLength(attr(root, "width"))
	h, hasH := parseLength(attr(root, "height"))
	vb, hasVB := parseViewBox(attr(root, "viewBox"))

	switch {
	case hasVB && !hasW && !hasH:
		w, h = vb.Width, vb.Height
	case hasVB && !hasW:
		w = h * vb.Width / vb.Height
	case hasVB && !hasH:
		h = w * vb.Height / vb.Width
	}
	if !hasW && !hasVB {
		w = defaultSize
	}
	if !hasH && !hasVB {
		h = defaultSize
	}
	if !hasVB {
		vb = core.Rectangle{Width: w, Height: h}
	}
	d.width, d.height, d.viewBox = w, h, vb
	d.stretch = strings.HasPrefix(strings.TrimSpace(attr(root, "preserveAspectRatio")), "none")
}

func parseViewBox(s string) (core.Rectangle, bool) {
	v, err := parseNumbers(s)
	if err != nil || len(v) != 4 || v[2] <= 0 || v[3] <= 0 {
		return core.Rectangle{}, false
	}
	return core.Rectangle{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, true
}

// parseLength converts an absolute length to user units. Percentages and
// font relative units are rejected.
func parseLength(s string) (float32, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	scale := float32(1)
	for _, u := range []struct {
		suffix string
		scale  float32
	}{
		{"px", 1}, {"pt", 4.0 / 3}, {"pc", 16}, {"in", 96}, {"cm", 96 / 2.54}, {"mm", 96 / 25.4},
	} {
		if strings.HasSuffix(s, u.suffix) {
			s, scale = strings.TrimSuffix(s, u.suffix), u.scale
			break
		}
	}
	v, err := parseNumbers(s)
	if err != nil || len(v) != 1 || v[0] <= 0 {
		return 0, false
	}
	return v[0] * scale, true
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// skipped elements hold content that is never rendered directly.
var skipped = map[string]bool{
	"defs": true, "clipPath": true, "mask": true, "symbol": true, "pattern": true,
	"marker": true, "linearGradient": true, "radialGradient": true, "filter": true,
	"text": true, "style": true, "title": true, "desc": true, "metadata": true,
	"script": true, "foreignObject": true, "image": true, "use": true, "switch": true,
}

type parser struct {
	dec *xml.Decoder
	doc *Document
}

// children parses elements up to the end of the current one.
func (p *parser) children(parent style) error {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if err := p.element(parent, t); err != nil {
				return err
			}
		}
	}
}

func (p *parser) element(parent style, e xml.StartElement) error {
	if skipped[e.Name.Local] {
		return p.dec.Skip()
	}
	st := p.inherit(parent, e)
	if !st.display {
		return p.dec.Skip()
	}
	switch e.Name.Local {
	case "g", "svg", "a":
		return p.children(st)
	}

	path, err := shapePath(e)
	if err != nil {
		return err
	}
	if path != nil && !path.IsEmpty() {
		p.addShape(path, st)
	}
	return p.dec.Skip()
}

func (p *parser) addShape(path *geometry.Path, st style) {
	s := shape{path: path, transform: st.transform}
	if c, ok := st.fill.resolve(st.color, st.fillOpacity*st.opacity); ok {
		s.fill = &geometry.Fill{Color: c, Rule: st.fillRule}
	}
	if c, ok := st.stroke.resolve(st.color, st.strokeOpacity*st.opacity); ok && st.strokeWidth > 0 {
		s.stroke = &geometry.Stroke{
			Color:      c,
			Width:      st.strokeWidth,
			Cap:        st.cap,
			Join:       st.join,
			MiterLimit: st.miterLimit,
			Dash:       geometry.LineDash{Segments: st.dash, Offset: st.dashOffset},
		}
	}
	if s.fill != nil || s.stroke != nil {
		p.doc.shapes = append(p.doc.shapes, s)
	}
}

// shapePath returns the outline of a shape element, or nil for elements
// that draw nothing.
func shapePath(e xml.StartElement) (*geometry.Path, error) {
	num := func(name string) float32 {
		v, _ := parseLength(attr(e, name))
		return v
	}
	coord := func(name string) float32 {
		v, err := parseNumbers(strings.TrimSuffix(strings.TrimSpace(attr(e, name)), "px"))
		if err != nil || len(v) != 1 {
			return 0
		}
		return v[0]
	}

	switch e.Name.Local {
	case "path":
		return parsePathData(attr(e, "d"))
	case "rect":
		w, h := num("width"), num("height")
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		rx, hasRX := parseLength(attr(e, "rx"))
		ry, hasRY := parseLength(attr(e, "ry"))
		if !hasRX {
			rx = ry
		}
		if !hasRY {
			ry = rx
		}
		return roundedRect(coord("x"), coord("y"), w, h, min(rx, w/2), min(ry, h/2)), nil
	case "circle":
		r := num("r")
		if r <= 0 {
			return nil, nil
		}
		return geometry.Circle(core.Point{X: coord("cx"), Y: coord("cy")}, r), nil
	case "ellipse":
		rx, ry := num("rx"), num("ry")
		if rx <= 0 || ry <= 0 {
			return nil, nil
		}
		return geometry.NewPath(func(p *geometry.Path) {
			p.Ellipse(core.Point{X: coord("cx"), Y: coord("cy")}, rx, ry)
		}), nil
	case "line":
		return geometry.Line(
			core.Point{X: coord("x1"), Y: coord("y1")},
			core.Point{X: coord("x2"), Y: coord("y2")},
		), nil
	case "polyline", "polygon":
		v, err := parseNumbers(attr(e, "points"))
		if err != nil {
			return nil, err
		}
		if len(v) < 4 {
			return nil, nil
		}
		path := &geometry.Path{}
		path.MoveTo(core.Point{X: v[0], Y: v[1]})
		for i := 2; i+1 < len(v); i += 2 {
			path.LineTo(core.Point{X: v[i], Y: v[i+1]})
		}
		if e.Name.Local == "polygon" {
			path.Close()
		}
		return path, nil
	}
	return nil, nil
}

// roundedRect builds a rectangle whose corners are quarter ellipses.
func roundedRect(x, y, w, h, rx, ry float32) *geometry.Path {
	p := &geometry.Path{}
	if rx <= 0 || ry <= 0 {
		p.Rectangle(core.Point{X: x, Y: y}, core.Size{Width: w, Height: h})
		return p
	}
	const k = 0.5522847498307936
	kx, ky := rx*k, ry*k
	pt := func(px, py float32) core.Point { return core.Point{X: px, Y: py} }
	p.MoveTo(pt(x+rx, y))
	p.LineTo(pt(x+w-rx, y))
	p.BezierCurveTo(pt(x+w-rx+kx, y), pt(x+w, y+ry-ky), pt(x+w, y+ry))
	p.LineTo(pt(x+w, y+h-ry))
	p.BezierCurveTo(pt(x+w, y+h-ry+ky), pt(x+w-rx+kx, y+h), pt(x+w-rx, y+h))
	p.LineTo(pt(x+rx, y+h))
	p.BezierCurveTo(pt(x+rx-kx, y+h), pt(x, y+h-ry+ky), pt(x, y+h-ry))
	p.LineTo(pt(x, y+ry))
	p.BezierCurveTo(pt(x, y+ry-ky), pt(x+rx-kx, y), pt(x+rx, y))
	p.Close()
	return p
}

// matrix is the affine transform [a c e; b d f].
type matrix struct{ a, b, c, d, e, f float32 }

var identity = matrix{a: 1, d: 1}

// mul returns m applied after o.
func (m matrix) mul(o matrix) matrix {
	return matrix{
		a: m.a*o.a + m.c*o.b,
		b: m.b*o.a + m.d*o.b,
		c: m.a*o.c + m.c*o.d,
		d: m.b*o.c + m.d*o.d,
		e: m.a*o.e + m.c*o.f + m.e,
		f: m.b*o.e + m.d*o.f + m.f,
	}
}

// parseTransform reads a transform list such as
// "translate(10 20) rotate(45)".
func parseTransform(s string) (matrix, error) {
	m := identity
	s = strings.TrimSpace(s)
	for s != "" {
		open := strings.IndexByte(s, '(')
		end := strings.IndexByte(s, ')')
		if open < 0 || end < open {
			return identity, fmt.Errorf("%w: transform %q", ErrInvalid, s)
		}
		name := strings.TrimSpace(s[:open])
		v, err := parseNumbers(s[open+1 : end])
		if err != nil {
			return identity, err
		}
		t, err := transformFunc(name, v)
		if err != nil {
			return identity, err
		}
		m = m.mul(t)
		s = strings.TrimLeft(s[end+1:], " \t\r\n,")
	}
	return m, nil
}

func transformFunc(name string, v []float32) (matrix, error) {
	arg := func(i int, def float32) float32 {
		if i < len(v) {
			return v[i]
		}
		return def
	}
	rad := func(deg float32) (float32, float32) {
		s, c := math.Sincos(float64(deg) * math.Pi / 180)
		return float32(s), float32(c)
	}
	if len(v) == 0 {
		return identity, fmt.Errorf("%w: %s() without arguments", ErrInvalid, name)
	}
	switch name {
	case "matrix":
		if len(v) != 6 {
			return identity, fmt.Errorf("%w: matrix() takes 6 arguments, got %d", ErrInvalid, len(v))
		}
		return matrix{v[0], v[1], v[2], v[3], v[4], v[5]}, nil
	case "translate":
		return matrix{a: 1, d: 1, e: v[0], f: arg(1, 0)}, nil
	case "scale":
		return matrix{a: v[0], d: arg(1, v[0])}, nil
	case "rotate":
		s, c := rad(v[0])
		r := matrix{a: c, b: s, c: -s, d: c}
		if len(v) == 3 {
			cx, cy := v[1], v[2]
			r = matrix{a: 1, d: 1, e: cx, f: cy}.mul(r).mul(matrix{a: 1, d: 1, e: -cx, f: -cy})
		}
		return r, nil
	case "skewX":
		s, c := rad(v[0])
		return matrix{a: 1, c: s / c, d: 1}, nil
	case "skewY":
		s, c := rad(v[0])
		return matrix{a: 1, b: s / c, d: 1}, nil
	}
	return identity, fmt.Errorf("%w: transform function %q", ErrInvalid, name)
}
