package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
	"github.com/gogpu/compositor/primitive"
)

const (
	// quadInstanceFloats is the number of float32 values per quad instance.
	quadInstanceFloats = 24
	quadInstanceSize   = quadInstanceFloats * 4

	// quadUniformSize holds the projection and a vec4 whose x is the scale.
	quadUniformSize = matrixSize + 16

	initialQuadInstances = 256
)

// QuadPipeline draws instanced rounded rectangles with borders and shadows.
type QuadPipeline struct {
	dev             gpucore.Device
	set             *pipelineSet
	constantsLayout gpucore.BindGroupLayoutID
	layers          []*quadLayer
	prepareLayer    int
}

type quadLayer struct {
	uniforms  *Buffer
	constants gpucore.BindGroupID
	instances *Buffer
	count     uint32
}

// NewQuadPipeline creates the quad pipeline for targets of the given format.
func NewQuadPipeline(dev gpucore.Device, format gputypes.TextureFormat) (*QuadPipeline, error) {
	constantsLayout, err := dev.CreateBindGroupLayout(&gpucore.BindGroupLayoutDescriptor{
		Label:   "quad_constants_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry(0)},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create quad bind group layout: %w", err)
	}

	set, err := createPipelineSet(dev, pipelineConfig{
		label:   "quad",
		wgsl:    quadShaderSource,
		groups:  []gpucore.BindGroupLayoutID{constantsLayout},
		buffers: quadVertexLayout(),
		format:  format,
	})
	if err != nil {
		dev.DestroyBindGroupLayout(constantsLayout)
		return nil, err
	}
	return &QuadPipeline{dev: dev, set: set, constantsLayout: constantsLayout}, nil
}

func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadInstanceSize,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // size
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // border color
				{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3}, // border radius
				{Format: gputypes.VertexFormatFloat32, Offset: 48, ShaderLocation: 4},   // border width
				{Format: gputypes.VertexFormatFloat32x4, Offset: 52, ShaderLocation: 5}, // background
				{Format: gputypes.VertexFormatFloat32x4, Offset: 68, ShaderLocation: 6}, // shadow color
				{Format: gputypes.VertexFormatFloat32x2, Offset: 84, ShaderLocation: 7}, // shadow offset
				{Format: gputypes.VertexFormatFloat32, Offset: 92, ShaderLocation: 8},   // shadow blur
			},
		},
	}
}

func (p *QuadPipeline) newLayer() (*quadLayer, error) {
	uniforms, err := NewBuffer(p.dev, "quad_uniforms", quadUniformSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	constants, err := p.dev.CreateBindGroup(&gpucore.BindGroupDescriptor{
		Label:   "quad_constants",
		Layout:  p.constantsLayout,
		Entries: []gpucore.BindGroupEntry{{Binding: 0, Buffer: uniforms.ID(), Size: quadUniformSize}},
	})
	if err != nil {
		uniforms.Destroy()
		return nil, fmt.Errorf("gpu: create quad bind group: %w", err)
	}
	instances, err := NewBuffer(p.dev, "quad_instances", initialQuadInstances*quadInstanceSize,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		p.dev.DestroyBindGroup(constants)
		uniforms.Destroy()
		return nil, err
	}
	return &quadLayer{uniforms: uniforms, constants: constants, instances: instances}, nil
}

// Prepare stages the quads of the next layer.
func (p *QuadPipeline) Prepare(f *Frame, quads []primitive.Quad) error {
	if p.prepareLayer == len(p.layers) {
		l, err := p.newLayer()
		if err != nil {
			return err
		}
		p.layers = append(p.layers, l)
	}
	l := p.layers[p.prepareLayer]

	uniforms, err := f.Belt.WriteBuffer(f.Encoder, l.uniforms.ID(), 0, quadUniformSize)
	if err != nil {
		return err
	}
	rest := putMatrix(uniforms, f.Viewport.Projection())
	putFloats(rest, f.scale(), 0, 0, 0)

	size := uint64(len(quads)) * quadInstanceSize
	if _, err := l.instances.Ensure(size); err != nil {
		return err
	}
	if size > 0 {
		data, err := f.Belt.WriteBuffer(f.Encoder, l.instances.ID(), 0, size)
		if err != nil {
			return err
		}
		for i := range quads {
			encodeQuad(data[i*quadInstanceSize:], &quads[i], f.SRGB)
		}
	}
	l.count = uint32(len(quads))
	p.prepareLayer++
	return nil
}

func encodeQuad(dst []byte, q *primitive.Quad, srgb bool) {
	border := q.Border.Color.Pack(srgb)
	background := q.Background.Pack(srgb)
	shadow := q.Shadow.Color.Pack(srgb)
	r := q.Border.Radius

	dst = putFloats(dst, q.Bounds.X, q.Bounds.Y, q.Bounds.Width, q.Bounds.Height)
	dst = putFloats(dst, border[:]...)
	dst = putFloats(dst, r[0], r[1], r[2], r[3], q.Border.Width)
	dst = putFloats(dst, background[:]...)
	dst = putFloats(dst, shadow[:]...)
	putFloats(dst, q.Shadow.Offset.X, q.Shadow.Offset.Y, q.Shadow.Blur)
}

// Render draws the quads of a prepared layer, clipped to bounds.
func (p *QuadPipeline) Render(pass gpucore.RenderPassEncoder, index int, bounds core.RectU) error {
	if index >= p.prepareLayer {
		return fmt.Errorf("gpu: quad layer %d: %w", index, ErrLayerNotPrepared)
	}
	l := p.layers[index]
	if l.count == 0 {
		return nil
	}
	pass.SetPipeline(p.set.pipeline)
	pass.SetScissorRect(bounds.X, bounds.Y, bounds.Width, bounds.Height)
	pass.SetBindGroup(0, l.constants)
	pass.SetVertexBuffer(0, l.instances.ID(), 0)
	pass.Draw(6, l.count, 0, 0)
	return nil
}

// EndFrame resets the layer counter.
func (p *QuadPipeline) EndFrame() {
	p.prepareLayer = 0
}

// Layers returns the number of per-layer slots allocated so far.
func (p *QuadPipeline) Layers() int { return len(p.layers) }

// Destroy releases every GPU resource of the pipeline.
func (p *QuadPipeline) Destroy() {
	for _, l := range p.layers {
		p.dev.DestroyBindGroup(l.constants)
		l.uniforms.Destroy()
		l.instances.Destroy()
	}
	p.layers = nil
	p.set.destroy(p.dev)
	p.dev.DestroyBindGroupLayout(p.constantsLayout)
}
