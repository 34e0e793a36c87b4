// Command compdemo renders a few frames of a sample scene headlessly and
// prints what the compositor recorded for each of them.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend"
	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/geometry"
	"github.com/gogpu/compositor/gpucore"
	"github.com/gogpu/compositor/primitive"
)

func main() {
	settings, err := compositor.SettingsFromEnv()
	if err != nil {
		log.Fatalf("settings: %v", err)
	}

	var (
		api     = flag.String("backend", backend.Default(), fmt.Sprintf("HAL backend %v", backend.Available()))
		frames  = flag.Int("frames", 3, "number of frames to render")
		aa      = flag.String("aa", settings.Antialiasing.String(), "mesh antialiasing: none, msaa2x, msaa4x, msaa8x")
		width   = flag.Uint("width", 800, "target width in physical pixels")
		height  = flag.Uint("height", 600, "target height in physical pixels")
		scale   = flag.Float64("scale", 1, "scale factor")
		overlay = flag.Bool("overlay", false, "draw the debug overlay")
		verbose = flag.Bool("v", false, "log every frame")
	)
	flag.Parse()

	settings.Antialiasing, err = compositor.ParseAntialiasing(*aa)
	if err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*api, *frames, settings, core.SizeU{Width: uint32(*width), Height: uint32(*height)}, *scale, *overlay, logger); err != nil { //nolint:gosec // flag values are small
		log.Fatal(err)
	}
}

func run(api string, frames int, settings compositor.Settings, size core.SizeU, scale float64, overlay bool, logger *slog.Logger) error {
	session, err := backend.Open(api)
	if err != nil {
		return err
	}
	defer session.Close()
	logger.Info("adapter opened", "backend", api, "name", session.Info.Name)

	const format = gputypes.TextureFormatBGRA8Unorm
	b, err := compositor.New(session.Device, format,
		compositor.WithSettings(settings),
		compositor.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer b.Destroy()

	tex, err := session.CreateTexture(&gpucore.TextureDescriptor{
		Label:  "compdemo target",
		Width:  size.Width,
		Height: size.Height,
		Format: format,
		Usage:  gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	defer session.DestroyTexture(tex)
	target, err := session.CreateTextureView(tex, "compdemo target")
	if err != nil {
		return err
	}
	defer session.DestroyTextureView(target)

	vp := core.NewViewport(size, scale)
	background := core.RGB8(0x20, 0x22, 0x28)

	for i := range frames {
		enc, err := session.NewEncoder(fmt.Sprintf("frame %d", i))
		if err != nil {
			return err
		}

		var lines []string
		if overlay {
			lines = []string{fmt.Sprintf("frame %d", i), settings.Antialiasing.String()}
		}
		if err := b.Present(enc, &background, target, vp, scene(vp.LogicalSize(), i), lines); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := session.Submit(enc); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		b.Recall()

		fmt.Printf("frame %d: %s\n", i, b.LastFrame())
	}
	return nil
}

// scene builds a frame of the sample scene. The spinner advances with frame.
func scene(size core.Size, frame int) []primitive.Primitive {
	var cards []primitive.Primitive
	for i := range 6 {
		x := 24 + float32(i%3)*(size.Width-48)/3
		y := 80 + float32(i/3)*140
		cards = append(cards, card(core.Rectangle{X: x, Y: y, Width: (size.Width-48)/3 - 16, Height: 120}, i))
	}

	return []primitive.Primitive{
		primitive.Text{
			Content: "compositor demo",
			Bounds:  core.Rectangle{X: 24, Y: 16, Width: size.Width - 48, Height: 40},
			Color:   core.White,
			Size:    28,
		},
		primitive.Group{Primitives: cards},
		primitive.Translate{
			Translation: core.Vector{X: size.Width - 120, Y: size.Height - 120},
			Content:     spinner(frame),
		},
		primitive.Image{
			Handle: checkerboard,
			Bounds: core.Rectangle{X: 24, Y: size.Height - 120, Width: 96, Height: 96},
			Filter: primitive.FilterNearest,
		},
		primitive.Translate{
			Translation: core.Vector{X: 136, Y: size.Height - 120},
			Content:     chart(frame),
		},
		primitive.Svg{
			Handle: logo,
			Bounds: core.Rectangle{X: size.Width - 240, Y: size.Height - 120, Width: 96, Height: 96},
		},
	}
}

// chart is a sine wave over a dashed grid, phase shifted by frame.
func chart(frame int) primitive.Primitive {
	f := geometry.NewFrame(core.Size{Width: 240, Height: 96})
	f.Fill(geometry.NewPath(func(p *geometry.Path) {
		p.RoundedRectangle(core.Point{}, f.Size(), 8)
	}), geometry.Fill{Color: core.RGB8(0x32, 0x35, 0x3d)})

	grid := geometry.Stroke{
		Color: core.Color{R: 1, G: 1, B: 1, A: 0.2},
		Width: 1,
		Dash:  geometry.LineDash{Segments: []float32{4, 4}},
	}
	for y := float32(24); y < f.Height(); y += 24 {
		f.Stroke(geometry.Line(core.Point{X: 8, Y: y}, core.Point{X: f.Width() - 8, Y: y}), grid)
	}

	wave := &geometry.Path{}
	for x := float32(8); x <= f.Width()-8; x += 4 {
		y := f.Height()/2 + 32*float32(math.Sin(float64(x)/24+float64(frame)/4))
		wave.LineTo(core.Point{X: x, Y: y})
	}
	f.Stroke(wave, geometry.Stroke{
		Color: core.RGB(1, 0.6, 0.1),
		Width: 2,
		Cap:   geometry.CapRound,
		Join:  geometry.JoinRound,
	})
	return f.IntoPrimitive()
}

var logo = primitive.NewSvgHandleFromMemory([]byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24">
	<circle cx="12" cy="12" r="10" fill="#3d7eff"/>
	<path d="M7 12.5l3 3 7-7" fill="none" stroke="#fff" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"/>
</svg>`))

func card(bounds core.Rectangle, i int) primitive.Primitive {
	accent := core.RGB(0.3+0.1*float32(i), 0.5, 0.9-0.1*float32(i))
	return primitive.Clip{
		Bounds: bounds,
		Content: primitive.Group{Primitives: []primitive.Primitive{
			primitive.Quad{
				Bounds:     bounds,
				Background: core.RGB8(0x32, 0x35, 0x3d),
				Border:     primitive.Border{Color: accent, Width: 2, Radius: [4]float32{8, 8, 8, 8}},
				Shadow:     primitive.Shadow{Color: core.Color{A: 0.4}, Offset: core.Vector{Y: 4}, Blur: 8},
			},
			primitive.Text{
				Content:    fmt.Sprintf("card %d", i+1),
				Bounds:     bounds,
				Color:      accent,
				Size:       18,
				Horizontal: primitive.AlignCenter,
				Vertical:   primitive.AlignCenter,
			},
		}},
	}
}

// spinner is a triangle fan of 12 segments with one highlighted segment.
func spinner(frame int) primitive.Mesh {
	const (
		segments = 12
		radius   = 40
	)
	m := primitive.Mesh{Size: core.Size{Width: 2 * radius, Height: 2 * radius}}
	m.Vertices = append(m.Vertices, primitive.SolidVertex{Position: [2]float32{radius, radius}, Color: [4]float32{1, 1, 1, 1}})
	for i := range segments + 1 {
		a := 2 * math.Pi * float64(i) / segments
		c := [4]float32{0.4, 0.4, 0.5, 1}
		if i%segments == frame%segments {
			c = [4]float32{1, 0.6, 0.1, 1}
		}
		m.Vertices = append(m.Vertices, primitive.SolidVertex{
			Position: [2]float32{radius + radius*float32(math.Cos(a)), radius + radius*float32(math.Sin(a))},
			Color:    c,
		})
	}
	for i := range uint32(segments) {
		m.Indices = append(m.Indices, 0, i+1, i+2)
	}
	return m
}

var checkerboard = func() *primitive.Handle {
	const n = 8
	pixels := make([]byte, 0, n*n*4)
	for y := range n {
		for x := range n {
			v := byte(0x30)
			if (x+y)%2 == 0 {
				v = 0xd0
			}
			pixels = append(pixels, v, v, v, 0xff)
		}
	}
	return primitive.NewHandleFromPixels(n, n, pixels)
}()
