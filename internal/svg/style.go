package svg

import (
	"encoding/xml"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/geometry"
)

type paintKind uint8

const (
	paintNone paintKind = iota
	paintColor
	paintCurrent
)

type paint struct {
	kind  paintKind
	color core.Color
}

// resolve returns the paint color with its alpha scaled by opacity.
func (p paint) resolve(current core.Color, opacity float32) (core.Color, bool) {
	var c core.Color
	switch p.kind {
	case paintColor:
		c = p.color
	case paintCurrent:
		c = current
	default:
		return core.Color{}, false
	}
	c.A *= min(max(opacity, 0), 1)
	return c, c.A > 0
}

// style holds the presentation properties in effect for an element.
type style struct {
	transform matrix
	display   bool

	color         core.Color
	fill          paint
	fillOpacity   float32
	fillRule      geometry.FillRule
	stroke        paint
	strokeOpacity float32
	strokeWidth   float32
	cap           geometry.LineCap
	join          geometry.LineJoin
	miterLimit    float32
	dash          []float32
	dashOffset    float32

	// opacity is the product of the opacity of the element and its
	// ancestors.
	opacity float32
}

func defaultStyle() style {
	return style{
		transform:     identity,
		display:       true,
		color:         core.Black,
		fill:          paint{kind: paintColor, color: core.Black},
		fillOpacity:   1,
		strokeOpacity: 1,
		strokeWidth:   1,
		miterLimit:    geometry.DefaultMiterLimit,
		opacity:       1,
	}
}

// inherit returns the style of e, starting from its parent's.
func (p *parser) inherit(parent style, e xml.StartElement) style {
	st := parent
	st.display = true
	st.transform = identity
	for _, a := range e.Attr {
		if a.Name.Local == "style" {
			continue
		}
		st.set(a.Name.Local, a.Value)
	}
	// Declarations in the style attribute override presentation
	// attributes.
	for _, decl := range strings.Split(attr(e, "style"), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok {
			st.set(strings.TrimSpace(name), value)
		}
	}
	st.transform = parent.transform.mul(st.transform)
	return st
}

// set applies one property. Invalid values are ignored.
func (st *style) set(name, value string) {
	value = strings.TrimSpace(value)
	if value == "inherit" {
		return
	}
	switch name {
	case "transform":
		if m, err := parseTransform(value); err == nil {
			st.transform = m
		}
	case "display":
		st.display = value != "none"
	case "visibility":
		if value == "hidden" || value == "collapse" {
			st.fill.kind, st.stroke.kind = paintNone, paintNone
		}
	case "color":
		if c, ok := parseColor(value); ok {
			st.color = c
		}
	case "fill":
		if p, ok := parsePaint(value); ok {
			st.fill = p
		}
	case "stroke":
		if p, ok := parsePaint(value); ok {
			st.stroke = p
		}
	case "fill-opacity":
		st.fillOpacity = parseOpacity(value, st.fillOpacity)
	case "stroke-opacity":
		st.strokeOpacity = parseOpacity(value, st.strokeOpacity)
	case "opacity":
		st.opacity *= parseOpacity(value, 1)
	case "fill-rule":
		switch value {
		case "evenodd":
			st.fillRule = geometry.EvenOdd
		case "nonzero":
			st.fillRule = geometry.NonZero
		}
	case "stroke-width":
		if w, ok := parseLength(value); ok {
			st.strokeWidth = w
		} else if value == "0" {
			st.strokeWidth = 0
		}
	case "stroke-linecap":
		switch value {
		case "butt":
			st.cap = geometry.CapButt
		case "square":
			st.cap = geometry.CapSquare
		case "round":
			st.cap = geometry.CapRound
		}
	case "stroke-linejoin":
		switch value {
		case "miter", "miter-clip", "arcs":
			st.join = geometry.JoinMiter
		case "round":
			st.join = geometry.JoinRound
		case "bevel":
			st.join = geometry.JoinBevel
		}
	case "stroke-miterlimit":
		if v, err := strconv.ParseFloat(value, 32); err == nil && v >= 1 {
			st.miterLimit = float32(v)
		}
	case "stroke-dasharray":
		st.dash = nil
		if value != "none" {
			if v, err := parseNumbers(strings.ReplaceAll(value, "px", "")); err == nil {
				st.dash = v
			}
		}
	case "stroke-dashoffset":
		if v, err := parseNumbers(strings.TrimSuffix(value, "px")); err == nil && len(v) == 1 {
			st.dashOffset = v[0]
		}
	}
}

func parseOpacity(s string, def float32) float32 {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 32)
	if err != nil {
		return def
	}
	if pct {
		v /= 100
	}
	return float32(min(max(v, 0), 1))
}

func parsePaint(s string) (paint, bool) {
	switch s {
	case "none":
		return paint{kind: paintNone}, true
	case "currentColor":
		return paint{kind: paintCurrent}, true
	}
	// Paint servers fall back to the color after the reference, if any.
	if strings.HasPrefix(s, "url(") {
		end := strings.IndexByte(s, ')')
		if end < 0 {
			return paint{}, false
		}
		s = strings.TrimSpace(s[end+1:])
		if s == "" {
			return paint{kind: paintNone}, true
		}
		return parsePaint(s)
	}
	c, ok := parseColor(s)
	if !ok {
		return paint{}, false
	}
	return paint{kind: paintColor, color: c}, true
}

// parseColor reads a hex, rgb(), rgba() or named color.
func parseColor(s string) (core.Color, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	lower := strings.ToLower(s)
	if lower == "transparent" {
		return core.Color{}, true
	}
	if fn, args, ok := strings.Cut(lower, "("); ok && strings.HasSuffix(args, ")") && (fn == "rgb" || fn == "rgba") {
		parts := strings.FieldsFunc(strings.TrimSuffix(args, ")"), func(r rune) bool {
			return r == ',' || r == ' ' || r == '/' || r == '\t'
		})
		if len(parts) != 3 && len(parts) != 4 {
			return core.Color{}, false
		}
		var v [4]float32
		v[3] = 1
		for i, p := range parts {
			pct := strings.HasSuffix(p, "%")
			f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 32)
			if err != nil {
				return core.Color{}, false
			}
			switch {
			case pct:
				f /= 100
			case i < 3:
				f /= 255
			}
			v[i] = float32(min(max(f, 0), 1))
		}
		return core.Color{R: v[0], G: v[1], B: v[2], A: v[3]}, true
	}
	if c, ok := colornames.Map[lower]; ok {
		return core.Color{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255, A: float32(c.A) / 255}, true
	}
	return core.Color{}, false
}

func parseHex(s string) (core.Color, bool) {
	switch len(s) {
	case 3, 4:
		var b strings.Builder
		for _, r := range s {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		s = b.String()
	case 6, 8:
	default:
		return core.Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return core.Color{}, false
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return core.Color{
		R: float32(v>>24&0xff) / 255,
		G: float32(v>>16&0xff) / 255,
		B: float32(v>>8&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, true
}
