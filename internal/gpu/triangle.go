package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
	"github.com/gogpu/compositor/layer"
)

const (
	// meshVertexSize is position and color.
	meshVertexSize = 6 * 4
	meshIndexSize  = 4

	initialMeshVertices = 1024
	initialMeshIndices  = 3 * initialMeshVertices
	initialMeshCount    = 16
)

// TrianglePipeline draws solid meshes. Unlike the other pipelines it
// records its own render passes, because multisampled meshes are drawn into
// an intermediate target and composited with a blit.
type TrianglePipeline struct {
	dev     gpucore.Device
	format  gputypes.TextureFormat
	samples uint32

	uniformLayout gpucore.BindGroupLayoutID
	set           *pipelineSet
	blit          *blitPipeline
	msaa          *msaaTargets

	layers       []*meshLayer
	prepareLayer int

	vertices []byte
	indices  []byte
}

type meshLayer struct {
	vertices *Buffer
	indices  *Buffer
	uniforms *Buffer

	// groups[i] binds the uniforms of mesh i at i*UniformAlignment.
	groups    []gpucore.BindGroupID
	groupsFor gpucore.BufferID

	draws []meshDraw
}

type meshDraw struct {
	firstIndex uint32
	indexCount uint32
	baseVertex int32
	group      int
	scissor    core.RectU
}

// NewTrianglePipeline creates the mesh pipeline. A sample count above one
// enables multisampling.
func NewTrianglePipeline(dev gpucore.Device, format gputypes.TextureFormat, samples uint32) (*TrianglePipeline, error) {
	samples = max(samples, 1)
	uniformLayout, err := dev.CreateBindGroupLayout(&gpucore.BindGroupLayoutDescriptor{
		Label:   "triangle_uniforms_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry(0)},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create triangle bind group layout: %w", err)
	}
	set, err := createPipelineSet(dev, pipelineConfig{
		label:       "triangle",
		wgsl:        triangleShaderSource,
		groups:      []gpucore.BindGroupLayoutID{uniformLayout},
		buffers:     meshVertexLayout(),
		format:      format,
		sampleCount: samples,
	})
	if err != nil {
		dev.DestroyBindGroupLayout(uniformLayout)
		return nil, err
	}

	p := &TrianglePipeline{
		dev:           dev,
		format:        format,
		samples:       samples,
		uniformLayout: uniformLayout,
		set:           set,
	}
	if samples > 1 {
		p.blit, err = newBlitPipeline(dev, format)
		if err != nil {
			p.Destroy()
			return nil, err
		}
	}
	return p, nil
}

func meshVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: meshVertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1}, // color
			},
		},
	}
}

// SampleCount returns the number of samples per pixel.
func (p *TrianglePipeline) SampleCount() uint32 { return p.samples }

func (p *TrianglePipeline) newLayer() (*meshLayer, error) {
	vertices, err := NewBuffer(p.dev, "triangle_vertices", initialMeshVertices*meshVertexSize,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	indices, err := NewBuffer(p.dev, "triangle_indices", initialMeshIndices*meshIndexSize,
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		vertices.Destroy()
		return nil, err
	}
	uniforms, err := NewBuffer(p.dev, "triangle_uniforms", initialMeshCount*UniformAlignment,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		vertices.Destroy()
		indices.Destroy()
		return nil, err
	}
	return &meshLayer{vertices: vertices, indices: indices, uniforms: uniforms}, nil
}

// ensureGroups makes sure there is one bind group per mesh, recreating all
// of them when the uniform buffer was replaced.
func (p *TrianglePipeline) ensureGroups(l *meshLayer, n int) error {
	if l.groupsFor != l.uniforms.ID() {
		for _, g := range l.groups {
			p.dev.DestroyBindGroup(g)
		}
		l.groups = l.groups[:0]
		l.groupsFor = l.uniforms.ID()
	}
	for i := len(l.groups); i < n; i++ {
		g, err := p.dev.CreateBindGroup(&gpucore.BindGroupDescriptor{
			Label:  "triangle_uniforms",
			Layout: p.uniformLayout,
			Entries: []gpucore.BindGroupEntry{{
				Binding: 0,
				Buffer:  l.uniforms.ID(),
				Offset:  uint64(i) * UniformAlignment,
				Size:    matrixSize,
			}},
		})
		if err != nil {
			return fmt.Errorf("gpu: create triangle bind group: %w", err)
		}
		l.groups = append(l.groups, g)
	}
	return nil
}

// Prepare validates and stages the meshes of the next layer. Each mesh is
// scissored to its clip bounds.
func (p *TrianglePipeline) Prepare(f *Frame, meshes []layer.Mesh) error {
	for i := range meshes {
		if err := meshes[i].Mesh.Validate(); err != nil {
			return fmt.Errorf("gpu: mesh %d: %w", i, err)
		}
	}

	if p.prepareLayer == len(p.layers) {
		l, err := p.newLayer()
		if err != nil {
			return err
		}
		p.layers = append(p.layers, l)
	}
	l := p.layers[p.prepareLayer]

	scale := f.scale()
	target := f.Viewport.PhysicalSize()
	projection := f.Viewport.ScaledProjection()

	p.vertices = p.vertices[:0]
	p.indices = p.indices[:0]
	l.draws = l.draws[:0]
	uniforms := make([]byte, 0, len(meshes)*UniformAlignment)

	for i := range meshes {
		m := &meshes[i]
		sc, ok := scissor(m.ClipBounds, scale, target)
		if !ok {
			continue
		}

		var slot [UniformAlignment]byte
		putMatrix(slot[:], projection.Multiply(core.Translate(m.Origin.X, m.Origin.Y)))
		uniforms = append(uniforms, slot[:]...)

		l.draws = append(l.draws, meshDraw{
			firstIndex: uint32(len(p.indices) / meshIndexSize),
			indexCount: uint32(len(m.Mesh.Indices)),
			baseVertex: int32(len(p.vertices) / meshVertexSize),
			group:      len(l.draws),
			scissor:    sc,
		})

		for _, v := range m.Mesh.Vertices {
			c := core.Color{R: v.Color[0], G: v.Color[1], B: v.Color[2], A: v.Color[3]}.Pack(f.SRGB)
			var vtx [meshVertexSize]byte
			putFloats(vtx[:], v.Position[0], v.Position[1], c[0], c[1], c[2], c[3])
			p.vertices = append(p.vertices, vtx[:]...)
		}
		for _, idx := range m.Mesh.Indices {
			var b [meshIndexSize]byte
			putUint32s(b[:], idx)
			p.indices = append(p.indices, b[:]...)
		}
	}

	if len(l.draws) > 0 {
		if _, err := l.vertices.Ensure(uint64(len(p.vertices))); err != nil {
			return err
		}
		if _, err := l.indices.Ensure(uint64(len(p.indices))); err != nil {
			return err
		}
		if _, err := l.uniforms.Ensure(uint64(len(uniforms))); err != nil {
			return err
		}
		if err := p.ensureGroups(l, len(l.draws)); err != nil {
			return err
		}
		if err := f.Belt.Write(f.Encoder, l.vertices.ID(), 0, p.vertices); err != nil {
			return err
		}
		if err := f.Belt.Write(f.Encoder, l.indices.ID(), 0, p.indices); err != nil {
			return err
		}
		if err := f.Belt.Write(f.Encoder, l.uniforms.ID(), 0, uniforms); err != nil {
			return err
		}
	}
	p.prepareLayer++
	return nil
}

// Render records the meshes of a prepared layer in passes of its own.
// Without multisampling that is a single pass loading the target. With
// multisampling the meshes are drawn into a cleared multisampled texture
// that resolves into an intermediate one, which a second pass blends onto
// the target within bounds. The encoder must have no open pass. Render
// returns the number of passes it recorded.
func (p *TrianglePipeline) Render(enc gpucore.CommandEncoder, target Target, index int, bounds core.RectU) (int, error) {
	if index >= p.prepareLayer {
		return 0, fmt.Errorf("gpu: mesh layer %d: %w", index, ErrLayerNotPrepared)
	}
	l := p.layers[index]
	if len(l.draws) == 0 {
		return 0, nil
	}

	if p.samples == 1 {
		pass := enc.BeginRenderPass(&gpucore.RenderPassDescriptor{
			Label:  "triangle",
			Target: target.View,
			LoadOp: gputypes.LoadOpLoad,
		})
		p.draw(pass, l)
		pass.End()
		return 1, nil
	}

	if err := p.ensureMSAA(target.Size); err != nil {
		return 0, err
	}
	pass := enc.BeginRenderPass(&gpucore.RenderPassDescriptor{
		Label:         "triangle_msaa",
		Target:        p.msaa.view,
		ResolveTarget: p.msaa.resolveView,
		LoadOp:        gputypes.LoadOpClear,
		ClearValue:    gputypes.Color{},
	})
	p.draw(pass, l)
	pass.End()

	blit := enc.BeginRenderPass(&gpucore.RenderPassDescriptor{
		Label:  "triangle_blit",
		Target: target.View,
		LoadOp: gputypes.LoadOpLoad,
	})
	p.blit.draw(blit, p.msaa.group, bounds)
	blit.End()
	return 2, nil
}

func (p *TrianglePipeline) draw(pass gpucore.RenderPassEncoder, l *meshLayer) {
	pass.SetPipeline(p.set.pipeline)
	pass.SetVertexBuffer(0, l.vertices.ID(), 0)
	pass.SetIndexBuffer(l.indices.ID(), gputypes.IndexFormatUint32, 0)
	for _, d := range l.draws {
		pass.SetScissorRect(d.scissor.X, d.scissor.Y, d.scissor.Width, d.scissor.Height)
		pass.SetBindGroup(0, l.groups[d.group])
		pass.DrawIndexed(d.indexCount, 1, d.firstIndex, d.baseVertex, 0)
	}
}

// EndFrame resets the layer counter.
func (p *TrianglePipeline) EndFrame() {
	p.prepareLayer = 0
}

// Layers returns the number of per-layer slots allocated so far.
func (p *TrianglePipeline) Layers() int { return len(p.layers) }

// Destroy releases every GPU resource of the pipeline.
func (p *TrianglePipeline) Destroy() {
	for _, l := range p.layers {
		for _, g := range l.groups {
			p.dev.DestroyBindGroup(g)
		}
		l.vertices.Destroy()
		l.indices.Destroy()
		l.uniforms.Destroy()
	}
	p.layers = nil
	p.msaa.destroy(p.dev)
	p.msaa = nil
	p.blit.destroy(p.dev)
	p.set.destroy(p.dev)
	p.dev.DestroyBindGroupLayout(p.uniformLayout)
}
