package gpu

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/layer"
	"github.com/gogpu/compositor/primitive"
)

func triangleMesh(origin core.Vector, clip core.Rectangle) layer.Mesh {
	return layer.Mesh{
		Origin:     origin,
		ClipBounds: clip,
		Mesh: &primitive.Mesh{
			Size: core.Size{Width: 10, Height: 10},
			Vertices: []primitive.SolidVertex{
				{Position: [2]float32{0, 0}, Color: [4]float32{1, 0, 0, 1}},
				{Position: [2]float32{10, 0}, Color: [4]float32{0, 1, 0, 1}},
				{Position: [2]float32{0, 10}, Color: [4]float32{0, 0, 1, 1}},
			},
			Indices: []uint32{0, 1, 2},
		},
	}
}

func TestTrianglePipeline_SingleSample(t *testing.T) {
	h := newHarness(t, 100, 100, 2)
	p, err := NewTrianglePipeline(h.dev, testFormat, 1)
	if err != nil {
		t.Fatalf("NewTrianglePipeline() error = %v", err)
	}

	meshes := []layer.Mesh{
		triangleMesh(core.Vector{X: 5, Y: 5}, core.Rectangle{X: 5, Y: 5, Width: 10, Height: 10}),
		triangleMesh(core.Vector{X: 20, Y: 5}, core.Rectangle{X: 20, Y: 5, Width: 10, Height: 10}),
	}
	if err := p.Prepare(h.frame, meshes); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if _, err := p.Render(h.enc, h.target(), 0, core.RectU{Width: 100, Height: 100}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	h.submit()

	if got := h.enc.PassLabels(); !slices.Equal(got, []string{"triangle"}) {
		t.Fatalf("passes = %v, want [triangle]", got)
	}
	pass := h.enc.Passes[0]
	if pass.Desc.LoadOp != gputypes.LoadOpLoad {
		t.Error("mesh pass clears the target")
	}
	if h.enc.Open() {
		t.Error("mesh pass left open")
	}
	if len(pass.Draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(pass.Draws))
	}
	second := pass.Draws[1]
	if second.BaseVertex != 3 || second.First != 3 || second.Count != 3 {
		t.Errorf("second draw = base %d first %d count %d, want 3 3 3", second.BaseVertex, second.First, second.Count)
	}
	if second.Scissor != [4]uint32{40, 10, 20, 20} {
		t.Errorf("second scissor = %v, want [40 10 20 20]", second.Scissor)
	}

	// The uniform of mesh 1 translates by its origin in physical pixels.
	l := p.layers[0]
	uniforms := h.dev.Buffers[l.uniforms.ID()].Data
	tx := floatAt(uniforms, UniformAlignment/4+12)
	want := float32(2*20)*(2.0/100) - 1
	if tx < want-1e-5 || tx > want+1e-5 {
		t.Errorf("translation x = %v, want %v", tx, want)
	}
}

func TestTrianglePipeline_Multisampled(t *testing.T) {
	h := newHarness(t, 64, 64, 1)
	p, err := NewTrianglePipeline(h.dev, testFormat, 4)
	if err != nil {
		t.Fatalf("NewTrianglePipeline() error = %v", err)
	}
	meshes := []layer.Mesh{triangleMesh(core.Vector{}, core.Rectangle{Width: 10, Height: 10})}
	if err := p.Prepare(h.frame, meshes); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	n, err := p.Render(h.enc, h.target(), 0, core.RectU{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Render() recorded %d passes, want 2", n)
	}

	if got := h.enc.PassLabels(); !slices.Equal(got, []string{"triangle_msaa", "triangle_blit"}) {
		t.Fatalf("passes = %v", got)
	}
	msaa, blit := h.enc.Passes[0], h.enc.Passes[1]
	if msaa.Desc.LoadOp != gputypes.LoadOpClear || msaa.Desc.ResolveTarget == 0 {
		t.Errorf("msaa pass = %+v, want a cleared pass with a resolve target", msaa.Desc)
	}
	if blit.Desc.Target != h.view || blit.Desc.LoadOp != gputypes.LoadOpLoad {
		t.Errorf("blit pass = %+v, want a load pass on the target", blit.Desc)
	}
	if len(blit.Draws) != 1 || blit.Draws[0].Count != 3 {
		t.Errorf("blit draws = %+v, want one full-screen triangle", blit.Draws)
	}
	tex := h.dev.Textures[h.dev.Views[msaa.Desc.Target]]
	if tex.Desc.SampleCount != 4 {
		t.Errorf("msaa sample count = %d, want 4", tex.Desc.SampleCount)
	}

	// Targets are reused while the size is unchanged.
	textures := len(h.dev.Textures)
	p.EndFrame()
	h.submit()
	h.next(h.frame.Viewport)
	if err := p.Prepare(h.frame, meshes); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if _, err := p.Render(h.enc, h.target(), 0, core.RectU{Width: 64, Height: 64}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(h.dev.Textures) != textures {
		t.Errorf("textures = %d, want %d", len(h.dev.Textures), textures)
	}
}

func TestTrianglePipeline_InvalidMesh(t *testing.T) {
	h := newHarness(t, 64, 64, 1)
	p, err := NewTrianglePipeline(h.dev, testFormat, 1)
	if err != nil {
		t.Fatalf("NewTrianglePipeline() error = %v", err)
	}
	m := triangleMesh(core.Vector{}, core.Rectangle{Width: 10, Height: 10})
	m.Mesh.Indices = []uint32{0, 1, 7}
	if err := p.Prepare(h.frame, []layer.Mesh{m}); !errors.Is(err, primitive.ErrInvalidMesh) {
		t.Errorf("Prepare() error = %v, want ErrInvalidMesh", err)
	}
}

func TestTrianglePipeline_ClippedOut(t *testing.T) {
	h := newHarness(t, 64, 64, 1)
	p, err := NewTrianglePipeline(h.dev, testFormat, 1)
	if err != nil {
		t.Fatalf("NewTrianglePipeline() error = %v", err)
	}
	meshes := []layer.Mesh{triangleMesh(core.Vector{X: 100}, core.Rectangle{X: 100, Width: 10, Height: 10})}
	if err := p.Prepare(h.frame, meshes); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if _, err := p.Render(h.enc, h.target(), 0, core.RectU{Width: 64, Height: 64}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(h.enc.Passes) != 0 {
		t.Errorf("passes = %v, want none", h.enc.PassLabels())
	}
}

func TestTrianglePipeline_UniformGrowthRebindsGroups(t *testing.T) {
	h := newHarness(t, 64, 64, 1)
	p, err := NewTrianglePipeline(h.dev, testFormat, 1)
	if err != nil {
		t.Fatalf("NewTrianglePipeline() error = %v", err)
	}
	meshes := make([]layer.Mesh, initialMeshCount+4)
	for i := range meshes {
		meshes[i] = triangleMesh(core.Vector{}, core.Rectangle{Width: 10, Height: 10})
	}
	if err := p.Prepare(h.frame, meshes); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	l := p.layers[0]
	if len(l.groups) != len(meshes) {
		t.Fatalf("groups = %d, want %d", len(l.groups), len(meshes))
	}
	for i, g := range l.groups {
		desc := h.dev.BindGroups[g]
		if desc.Entries[0].Buffer != l.uniforms.ID() {
			t.Errorf("group %d binds a stale uniform buffer", i)
		}
		if desc.Entries[0].Offset != uint64(i)*UniformAlignment {
			t.Errorf("group %d offset = %d", i, desc.Entries[0].Offset)
		}
	}
}

func TestTrianglePipeline_VertexColors(t *testing.T) {
	tests := []struct {
		name   string
		format gputypes.TextureFormat
		srgb   bool
		want   [4]float32
	}{
		{"unorm target keeps sRGB values", gputypes.TextureFormatBGRA8Unorm, false, [4]float32{0.5, 1, 0, 0.25}},
		{"srgb target gets linear values", gputypes.TextureFormatBGRA8UnormSrgb, true, [4]float32{0.21404, 1, 0, 0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 100, 100, 1)
			h.frame.SRGB = tt.srgb
			p, err := NewTrianglePipeline(h.dev, tt.format, 1)
			if err != nil {
				t.Fatalf("NewTrianglePipeline() error = %v", err)
			}

			m := triangleMesh(core.Vector{}, core.Rectangle{Width: 10, Height: 10})
			m.Mesh.Vertices[0].Color = [4]float32{0.5, 1, 0, 0.25}
			if err := p.Prepare(h.frame, []layer.Mesh{m}); err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			h.submit()

			verts := h.dev.Buffers[p.layers[0].vertices.ID()].Data
			for i, want := range tt.want {
				// Vertex 0 is position (2 floats) then color.
				if got := floatAt(verts, 2+i); got < want-1e-4 || got > want+1e-4 {
					t.Errorf("color component %d = %v, want %v", i, got, want)
				}
			}
		})
	}
}
