package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/primitive"
)

func TestQuadPipeline_PrepareRender(t *testing.T) {
	h := newHarness(t, 200, 100, 2)
	p, err := NewQuadPipeline(h.dev, testFormat)
	if err != nil {
		t.Fatalf("NewQuadPipeline() error = %v", err)
	}

	quads := []primitive.Quad{
		{
			Bounds:     core.Rectangle{X: 10, Y: 20, Width: 30, Height: 40},
			Background: core.RGB(1, 0, 0),
			Border:     primitive.Border{Width: 2, Radius: [4]float32{1, 2, 3, 4}},
			Shadow:     primitive.Shadow{Offset: core.Vector{X: 5, Y: 6}, Blur: 7},
		},
		{Bounds: core.Rectangle{X: 1, Y: 2, Width: 3, Height: 4}},
	}
	if err := p.Prepare(h.frame, quads); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	pass := h.pass()
	bounds := core.RectU{Width: 200, Height: 100}
	if err := p.Render(pass, 0, bounds); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	pass.End()
	h.submit()

	draws := h.enc.Passes[0].Draws
	if len(draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(draws))
	}
	d := draws[0]
	if d.Count != 6 || d.Instances != 2 {
		t.Errorf("draw = %d vertices x %d instances, want 6 x 2", d.Count, d.Instances)
	}
	if d.Scissor != [4]uint32{0, 0, 200, 100} {
		t.Errorf("scissor = %v", d.Scissor)
	}

	l := p.layers[0]
	inst := h.dev.Buffers[l.instances.ID()].Data
	// Bounds, radius, border width, background, shadow and the width of
	// the second quad.
	want := map[int]float32{
		0: 10, 1: 20, 2: 30, 3: 40,
		8: 1, 11: 4, 12: 2,
		13: 1, 14: 0, 16: 1,
		21: 5, 22: 6, 23: 7,
		quadInstanceFloats + 2: 3,
	}
	for i, v := range want {
		if got := floatAt(inst, i); got != v {
			t.Errorf("instance float %d = %v, want %v", i, got, v)
		}
	}

	uniforms := h.dev.Buffers[l.uniforms.ID()].Data
	if got := floatAt(uniforms, 0); got != 2.0/200 {
		t.Errorf("projection[0] = %v, want %v", got, 2.0/200)
	}
	if got := floatAt(uniforms, 16); got != 2 {
		t.Errorf("scale = %v, want 2", got)
	}
}

func TestQuadPipeline_GrowsInstances(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p, err := NewQuadPipeline(h.dev, testFormat)
	if err != nil {
		t.Fatalf("NewQuadPipeline() error = %v", err)
	}

	quads := make([]primitive.Quad, initialQuadInstances+10)
	for i := range quads {
		quads[i].Bounds = core.Rectangle{X: float32(i), Width: 1, Height: 1}
	}
	if err := p.Prepare(h.frame, quads); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	h.submit()

	inst := h.dev.Buffers[p.layers[0].instances.ID()].Data
	last := len(quads) - 1
	if got := floatAt(inst, last*quadInstanceFloats); got != float32(last) {
		t.Errorf("last instance x = %v, want %d", got, last)
	}
}

func TestQuadPipeline_SlotsSurviveFrames(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p, err := NewQuadPipeline(h.dev, testFormat)
	if err != nil {
		t.Fatalf("NewQuadPipeline() error = %v", err)
	}
	q := []primitive.Quad{{Bounds: core.Rectangle{Width: 10, Height: 10}}}

	for range 3 {
		if err := p.Prepare(h.frame, q); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
	}
	p.EndFrame()
	h.submit()
	created := h.dev.BuffersCreated

	h.next(h.frame.Viewport)
	if err := p.Prepare(h.frame, q); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if p.Layers() != 3 {
		t.Errorf("Layers() = %d, want 3", p.Layers())
	}
	if h.dev.BuffersCreated != created {
		t.Errorf("second frame created %d buffers", h.dev.BuffersCreated-created)
	}
}

func TestQuadPipeline_RenderUnprepared(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p, err := NewQuadPipeline(h.dev, testFormat)
	if err != nil {
		t.Fatalf("NewQuadPipeline() error = %v", err)
	}
	pass := h.pass()
	defer pass.End()
	if err := p.Render(pass, 0, core.RectU{Width: 1, Height: 1}); !errors.Is(err, ErrLayerNotPrepared) {
		t.Errorf("Render() error = %v, want ErrLayerNotPrepared", err)
	}
}
