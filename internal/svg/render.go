package svg

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/geometry"
)

// tolerance is the curve flattening tolerance in output pixels.
const tolerance = 0.2

// Rasterize draws the document into a width x height image with straight
// alpha. The viewBox is fitted to the image, centered and keeping its
// aspect ratio unless the document asks to stretch. A non-zero tint
// replaces every color, keeping the coverage.
func (d *Document) Rasterize(width, height int, tint core.Color) *image.NRGBA {
	width, height = max(width, 1), max(height, 1)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	sx := float32(width) / d.viewBox.Width
	sy := float32(height) / d.viewBox.Height
	var tx, ty float32
	if !d.stretch {
		s := min(sx, sy)
		tx = (float32(width) - d.viewBox.Width*s) / 2
		ty = (float32(height) - d.viewBox.Height*s) / 2
		sx, sy = s, s
	}
	base := matrix{a: sx, d: sy, e: tx - d.viewBox.X*sx, f: ty - d.viewBox.Y*sy}

	frame := geometry.NewFrame(core.Size{Width: float32(width), Height: float32(height)})
	frame.SetTolerance(tolerance)
	z := vector.NewRasterizer(width, height)
	for _, s := range d.shapes {
		m := base.mul(s.transform)
		if s.fill != nil {
			frame.Clear()
			frame.Transform(m.a, m.b, m.c, m.d, m.e, m.f)
			frame.Fill(s.path, *s.fill)
			paintMesh(z, dst, frame, s.fill.Color)
		}
		if s.stroke != nil {
			frame.Clear()
			frame.Transform(m.a, m.b, m.c, m.d, m.e, m.f)
			frame.Stroke(s.path, *s.stroke)
			paintMesh(z, dst, frame, s.stroke.Color)
		}
	}

	out := image.NewNRGBA(dst.Rect)
	draw.Draw(out, out.Rect, dst, image.Point{}, draw.Src)
	if tint != (core.Color{}) {
		applyTint(out, tint)
	}
	return out
}

// paintMesh composites the triangles of the frame in c. Every triangle is
// added with the same orientation, so overlapping triangles saturate the
// coverage instead of cancelling out.
func paintMesh(z *vector.Rasterizer, dst *image.RGBA, frame *geometry.Frame, c core.Color) {
	m, ok := frame.Mesh()
	if !ok {
		return
	}
	b := dst.Bounds()
	z.Reset(b.Dx(), b.Dy())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		p0 := m.Vertices[m.Indices[i]].Position
		p1 := m.Vertices[m.Indices[i+1]].Position
		p2 := m.Vertices[m.Indices[i+2]].Position
		if (p1[0]-p0[0])*(p2[1]-p0[1])-(p1[1]-p0[1])*(p2[0]-p0[0]) < 0 {
			p1, p2 = p2, p1
		}
		z.MoveTo(p0[0], p0[1])
		z.LineTo(p1[0], p1[1])
		z.LineTo(p2[0], p2[1])
		z.ClosePath()
	}
	z.Draw(dst, b, image.NewUniform(toNRGBA(c)), image.Point{})
}

func toNRGBA(c core.Color) color.NRGBA {
	ch := func(v float32) uint8 { return uint8(min(max(v, 0), 1)*255 + 0.5) }
	return color.NRGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: ch(c.A)}
}

func applyTint(img *image.NRGBA, tint core.Color) {
	t := toNRGBA(tint)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		img.Pix[i] = t.R
		img.Pix[i+1] = t.G
		img.Pix[i+2] = t.B
		img.Pix[i+3] = uint8((uint32(img.Pix[i+3])*uint32(t.A) + 127) / 255)
	}
}
