package svg

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/geometry"
)

// scanner reads numbers and commands from path data and number lists.
type scanner struct {
	s string
	i int
}

func (sc *scanner) skip() {
	for sc.i < len(sc.s) {
		switch sc.s[sc.i] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			sc.i++
		default:
			return
		}
	}
}

func (sc *scanner) done() bool {
	sc.skip()
	return sc.i >= len(sc.s)
}

func (sc *scanner) atNumber() bool {
	sc.skip()
	if sc.i >= len(sc.s) {
		return false
	}
	c := sc.s[sc.i]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (sc *scanner) number() (float32, error) {
	sc.skip()
	start := sc.i
	digits := func() {
		for sc.i < len(sc.s) && sc.s[sc.i] >= '0' && sc.s[sc.i] <= '9' {
			sc.i++
		}
	}
	if sc.i < len(sc.s) && (sc.s[sc.i] == '-' || sc.s[sc.i] == '+') {
		sc.i++
	}
	digits()
	if sc.i < len(sc.s) && sc.s[sc.i] == '.' {
		sc.i++
		digits()
	}
	if sc.i < len(sc.s) && (sc.s[sc.i] == 'e' || sc.s[sc.i] == 'E') {
		sc.i++
		if sc.i < len(sc.s) && (sc.s[sc.i] == '-' || sc.s[sc.i] == '+') {
			sc.i++
		}
		digits()
	}
	v, err := strconv.ParseFloat(sc.s[start:sc.i], 32)
	if err != nil {
		return 0, fmt.Errorf("%w: number at %d in %q", ErrInvalid, start, sc.s)
	}
	return float32(v), nil
}

// flag reads an arc flag, which may be written without a separator.
func (sc *scanner) flag() (bool, error) {
	sc.skip()
	if sc.i < len(sc.s) {
		switch sc.s[sc.i] {
		case '0':
			sc.i++
			return false, nil
		case '1':
			sc.i++
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: arc flag at %d in %q", ErrInvalid, sc.i, sc.s)
}

// parseNumbers reads a list of numbers separated by spaces or commas.
func parseNumbers(s string) ([]float32, error) {
	sc := scanner{s: s}
	var out []float32
	for !sc.done() {
		v, err := sc.number()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func reflect(p, about core.Point) core.Point {
	return core.Point{X: 2*about.X - p.X, Y: 2*about.Y - p.Y}
}

// parsePathData converts the d attribute of a path element. Parsing stops
// at the first error, keeping the segments read so far as SVG renderers
// do, and the error is only reported when nothing was read.
func parsePathData(d string) (*geometry.Path, error) {
	path := &geometry.Path{}
	sc := scanner{s: d}
	var (
		cur, start core.Point
		ctrl       core.Point // last control point, for S and T
		cmd, prev  byte
		segments   int
	)
	for !sc.done() {
		if !sc.atNumber() {
			cmd = sc.s[sc.i]
			sc.i++
		} else if cmd == 0 || cmd == 'Z' || cmd == 'z' {
			return partial(path, segments, fmt.Errorf("%w: number without command in path data", ErrInvalid))
		}

		rel := cmd >= 'a'
		abs := func(x, y float32) core.Point {
			if rel {
				return core.Point{X: cur.X + x, Y: cur.Y + y}
			}
			return core.Point{X: x, Y: y}
		}
		args := func(n int) ([]float32, error) {
			v := make([]float32, n)
			for i := range v {
				var err error
				if v[i], err = sc.number(); err != nil {
					return nil, err
				}
			}
			return v, nil
		}

		upper := cmd &^ 0x20
		var err error
		switch upper {
		case 'M':
			var v []float32
			if v, err = args(2); err == nil {
				cur = abs(v[0], v[1])
				start = cur
				path.MoveTo(cur)
				// Further pairs are implicit line commands.
				cmd = 'L' | (cmd & 0x20)
			}
		case 'L':
			var v []float32
			if v, err = args(2); err == nil {
				cur = abs(v[0], v[1])
				path.LineTo(cur)
			}
		case 'H':
			var v []float32
			if v, err = args(1); err == nil {
				if rel {
					cur.X += v[0]
				} else {
					cur.X = v[0]
				}
				path.LineTo(cur)
			}
		case 'V':
			var v []float32
			if v, err = args(1); err == nil {
				if rel {
					cur.Y += v[0]
				} else {
					cur.Y = v[0]
				}
				path.LineTo(cur)
			}
		case 'C':
			var v []float32
			if v, err = args(6); err == nil {
				c1, c2, to := abs(v[0], v[1]), abs(v[2], v[3]), abs(v[4], v[5])
				path.BezierCurveTo(c1, c2, to)
				ctrl, cur = c2, to
			}
		case 'S':
			var v []float32
			if v, err = args(4); err == nil {
				c1 := cur
				if prev == 'C' || prev == 'S' {
					c1 = reflect(ctrl, cur)
				}
				c2, to := abs(v[0], v[1]), abs(v[2], v[3])
				path.BezierCurveTo(c1, c2, to)
				ctrl, cur = c2, to
			}
		case 'Q':
			var v []float32
			if v, err = args(4); err == nil {
				c, to := abs(v[0], v[1]), abs(v[2], v[3])
				path.QuadraticCurveTo(c, to)
				ctrl, cur = c, to
			}
		case 'T':
			var v []float32
			if v, err = args(2); err == nil {
				c := cur
				if prev == 'Q' || prev == 'T' {
					c = reflect(ctrl, cur)
				}
				to := abs(v[0], v[1])
				path.QuadraticCurveTo(c, to)
				ctrl, cur = c, to
			}
		case 'A':
			err = arcCommand(&sc, path, &cur, abs)
		case 'Z':
			path.Close()
			cur = start
		default:
			err = fmt.Errorf("%w: path command %q", ErrInvalid, cmd)
		}
		if err != nil {
			return partial(path, segments, err)
		}
		prev = upper
		segments++
	}
	return path, nil
}

func partial(path *geometry.Path, segments int, err error) (*geometry.Path, error) {
	if segments == 0 {
		return nil, err
	}
	return path, nil
}

func arcCommand(sc *scanner, path *geometry.Path, cur *core.Point, abs func(x, y float32) core.Point) error {
	var v [3]float32
	for i := range v {
		var err error
		if v[i], err = sc.number(); err != nil {
			return err
		}
	}
	large, err := sc.flag()
	if err != nil {
		return err
	}
	sweep, err := sc.flag()
	if err != nil {
		return err
	}
	x, err := sc.number()
	if err != nil {
		return err
	}
	y, err := sc.number()
	if err != nil {
		return err
	}
	to := abs(x, y)
	arcTo(path, *cur, float64(v[0]), float64(v[1]), float64(v[2]), large, sweep, to)
	*cur = to
	return nil
}

// arcTo appends an elliptical arc given in endpoint form as cubic curves,
// converting it to center form first.
func arcTo(path *geometry.Path, from core.Point, rx, ry, rotation float64, large, sweep bool, to core.Point) {
	if from == to {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		path.LineTo(to)
		return
	}
	sinPhi, cosPhi := math.Sincos(rotation * math.Pi / 180)
	dx := float64(from.X-to.X) / 2
	dy := float64(from.Y-to.Y) / 2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	// Scale up radii too small to reach the endpoint.
	if l := x1*x1/(rx*rx) + y1*y1/(ry*ry); l > 1 {
		s := math.Sqrt(l)
		rx, ry = rx*s, ry*s
	}
	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := math.Sqrt(max(0, num/den))
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1 / ry
	cyp := -coef * ry * x1 / rx
	cx := cosPhi*cxp - sinPhi*cyp + float64(from.X+to.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + float64(from.Y+to.Y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	}
	theta := angle(1, 0, (x1-cxp)/rx, (y1-cyp)/ry)
	delta := angle((x1-cxp)/rx, (y1-cyp)/ry, (-x1-cxp)/rx, (-y1-cyp)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	// point returns the position and tangent at angle t.
	point := func(t float64) (x, y, tx, ty float64) {
		sin, cos := math.Sincos(t)
		x = cx + rx*cos*cosPhi - ry*sin*sinPhi
		y = cy + rx*cos*sinPhi + ry*sin*cosPhi
		tx = -rx*sin*cosPhi - ry*cos*sinPhi
		ty = -rx*sin*sinPhi + ry*cos*cosPhi
		return x, y, tx, ty
	}
	n := int(math.Ceil(math.Abs(delta) / (math.Pi / 2)))
	step := delta / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	for i := range n {
		t0 := theta + float64(i)*step
		sx, sy, stx, sty := point(t0)
		ex, ey, etx, ety := point(t0 + step)
		end := core.Point{X: float32(ex), Y: float32(ey)}
		if i == n-1 {
			end = to
		}
		path.BezierCurveTo(
			core.Point{X: float32(sx + k*stx), Y: float32(sy + k*sty)},
			core.Point{X: float32(ex - k*etx), Y: float32(ey - k*ety)},
			end,
		)
	}
}
