package text

import (
	"strings"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// Glyph is a shaped glyph. X and Y are the pen position relative to the
// start of the line on the baseline, with Y growing downwards.
type Glyph struct {
	ID   uint16
	X, Y float32
}

// Line is one shaped line of a paragraph.
type Line struct {
	Glyphs []Glyph
	Width  float32
}

// Paragraph is shaped text. All measurements are in the unit of Size.
type Paragraph struct {
	Font       *Font
	Size       float32
	LineHeight float32

	// Ascent is the distance from the top of a line to its baseline.
	Ascent float32

	Lines []Line

	// Width is the width of the widest line.
	Width float32

	// Height is LineHeight times the number of lines.
	Height float32
}

// GlyphCount returns the number of glyphs in all lines.
func (p *Paragraph) GlyphCount() int {
	n := 0
	for i := range p.Lines {
		n += len(p.Lines[i].Glyphs)
	}
	return n
}

// Shape lays out content with the given family, font size and absolute line
// height. Lines are split at '\n'.
func (s *System) Shape(content, family string, size, lineHeight float32) *Paragraph {
	f := s.Font(family)
	ascent, descent := f.Metrics(size)

	p := &Paragraph{
		Font:       f,
		Size:       size,
		LineHeight: lineHeight,
		// Center the font box inside the line box.
		Ascent: ascent + (lineHeight-(ascent+descent))/2,
	}

	face := font.NewFace(f.shaping)
	for line := range strings.SplitSeq(content, "\n") {
		l := s.shapeLine(face, strings.TrimSuffix(line, "\r"), size)
		p.Width = max(p.Width, l.Width)
		p.Lines = append(p.Lines, l)
	}
	p.Height = lineHeight * float32(len(p.Lines))
	return p
}

func (s *System) shapeLine(face *font.Face, line string, size float32) Line {
	if line == "" {
		return Line{}
	}

	runes := []rune(line)
	var out Line
	var x, y float32

	for _, r := range bidiRuns(line, len(runes)) {
		dir := di.DirectionLTR
		if r.rtl {
			dir = di.DirectionRTL
		}

		output := s.shaper.Shape(shaping.Input{
			Text:      runes,
			RunStart:  r.start,
			RunEnd:    r.end,
			Direction: dir,
			Face:      face,
			Size:      toFixed(size),
			Script:    detectScript(runes[r.start:r.end]),
			Language:  s.lang,
		})

		for _, g := range output.Glyphs {
			out.Glyphs = append(out.Glyphs, Glyph{
				ID: uint16(g.GlyphID), //nolint:gosec // sfnt glyph indices are 16-bit
				X:  x + fromFixed(g.XOffset),
				Y:  y - fromFixed(g.YOffset),
			})
			x += fromFixed(g.Advance)
		}
	}
	out.Width = x
	return out
}

type run struct {
	start, end int
	rtl        bool
}

// bidiRuns splits a line into directional runs in visual order. Indices are
// rune offsets; end is exclusive.
func bidiRuns(line string, n int) []run {
	fallback := []run{{start: 0, end: n}}

	p := bidi.Paragraph{}
	if _, err := p.SetString(line, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return fallback
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return fallback
	}

	runs := make([]run, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		r := ordering.Run(i)
		// Pos returns inclusive rune indices.
		start, end := r.Pos()
		if start < 0 || end >= n || start > end {
			return fallback
		}
		runs = append(runs, run{start: start, end: end + 1, rtl: r.Direction() == bidi.RightToLeft})
	}
	return runs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func toFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fromFixed(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
