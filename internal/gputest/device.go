package gputest

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/gpucore"
)

// ErrInjected is returned by creation calls when a failure was requested
// with FailBufferAfter.
var ErrInjected = errors.New("gputest: injected failure")

// Buffer is a recorded buffer.
type Buffer struct {
	Desc gpucore.BufferDescriptor
	Data []byte
}

// Texture is a recorded texture.
type Texture struct {
	Desc   gpucore.TextureDescriptor
	Data   []byte
	Writes int
}

// Device is a recording gpucore.Device.
type Device struct {
	limits gpucore.Limits
	nextID uint64

	Buffers        map[gpucore.BufferID]*Buffer
	Textures       map[gpucore.TextureID]*Texture
	Views          map[gpucore.TextureViewID]gpucore.TextureID
	Samplers       map[gpucore.SamplerID]gpucore.SamplerDescriptor
	Shaders        map[gpucore.ShaderModuleID]gpucore.ShaderModuleDescriptor
	Layouts        map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDescriptor
	PipeLayouts    map[gpucore.PipelineLayoutID][]gpucore.BindGroupLayoutID
	BindGroups     map[gpucore.BindGroupID]gpucore.BindGroupDescriptor
	Pipelines      map[gpucore.RenderPipelineID]gpucore.RenderPipelineDescriptor
	BuffersCreated int

	// FailBufferAfter makes CreateBuffer fail once this many further
	// buffers have been created. Negative disables injection.
	FailBufferAfter int

	pending []func()
}

var _ gpucore.Device = (*Device)(nil)

// NewDevice returns an empty device with default limits.
func NewDevice() *Device {
	return &Device{
		limits:          gpucore.DefaultLimits(),
		Buffers:         make(map[gpucore.BufferID]*Buffer),
		Textures:        make(map[gpucore.TextureID]*Texture),
		Views:           make(map[gpucore.TextureViewID]gpucore.TextureID),
		Samplers:        make(map[gpucore.SamplerID]gpucore.SamplerDescriptor),
		Shaders:         make(map[gpucore.ShaderModuleID]gpucore.ShaderModuleDescriptor),
		Layouts:         make(map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDescriptor),
		PipeLayouts:     make(map[gpucore.PipelineLayoutID][]gpucore.BindGroupLayoutID),
		BindGroups:      make(map[gpucore.BindGroupID]gpucore.BindGroupDescriptor),
		Pipelines:       make(map[gpucore.RenderPipelineID]gpucore.RenderPipelineDescriptor),
		FailBufferAfter: -1,
	}
}

// SetLimits overrides the reported limits.
func (d *Device) SetLimits(l gpucore.Limits) { d.limits = l }

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

// Limits implements gpucore.Device.
func (d *Device) Limits() gpucore.Limits { return d.limits }

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDescriptor) (gpucore.BufferID, error) {
	if d.FailBufferAfter == 0 {
		return gpucore.InvalidID, ErrInjected
	}
	if d.FailBufferAfter > 0 {
		d.FailBufferAfter--
	}
	if desc.Size == 0 {
		return gpucore.InvalidID, fmt.Errorf("gputest: zero-sized buffer %q", desc.Label)
	}
	id := gpucore.BufferID(d.newID())
	d.Buffers[id] = &Buffer{Desc: *desc, Data: make([]byte, desc.Size)}
	d.BuffersCreated++
	return id, nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) { delete(d.Buffers, id) }

// WriteBuffer implements gpucore.Device. The write is applied at the next
// Submit.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	src := append([]byte(nil), data...)
	d.pending = append(d.pending, func() {
		if b, ok := d.Buffers[id]; ok {
			copy(b.Data[offset:], src)
		}
	})
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDescriptor) (gpucore.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("gputest: empty texture %q", desc.Label)
	}
	id := gpucore.TextureID(d.newID())
	bpp := uint32(4)
	if desc.Format == gputypes.TextureFormatR8Unorm {
		bpp = 1
	}
	d.Textures[id] = &Texture{Desc: *desc, Data: make([]byte, desc.Width*desc.Height*bpp)}
	return id, nil
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) { delete(d.Textures, id) }

// WriteTexture implements gpucore.Device.
func (d *Device) WriteTexture(dst *gpucore.TextureWrite, data []byte) {
	w := *dst
	src := append([]byte(nil), data...)
	d.pending = append(d.pending, func() {
		t, ok := d.Textures[w.Texture]
		if !ok {
			return
		}
		t.Writes++
		bpp := uint32(len(t.Data)) / (t.Desc.Width * t.Desc.Height)
		for row := range w.Height {
			from := row * w.BytesPerRow
			to := ((w.Y+row)*t.Desc.Width + w.X) * bpp
			copy(t.Data[to:to+w.Width*bpp], src[from:])
		}
	})
}

// CreateTextureView implements gpucore.Device.
func (d *Device) CreateTextureView(tex gpucore.TextureID, _ string) (gpucore.TextureViewID, error) {
	if _, ok := d.Textures[tex]; !ok {
		return gpucore.InvalidID, fmt.Errorf("gputest: texture %d not found", tex)
	}
	id := gpucore.TextureViewID(d.newID())
	d.Views[id] = tex
	return id, nil
}

// NewTargetView creates a texture and view to render into.
func (d *Device) NewTargetView(width, height uint32) gpucore.TextureViewID {
	tex, _ := d.CreateTexture(&gpucore.TextureDescriptor{Label: "target", Width: width, Height: height, SampleCount: 1})
	view, _ := d.CreateTextureView(tex, "target")
	return view
}

// DestroyTextureView implements gpucore.Device.
func (d *Device) DestroyTextureView(id gpucore.TextureViewID) { delete(d.Views, id) }

// CreateSampler implements gpucore.Device.
func (d *Device) CreateSampler(desc *gpucore.SamplerDescriptor) (gpucore.SamplerID, error) {
	id := gpucore.SamplerID(d.newID())
	d.Samplers[id] = *desc
	return id, nil
}

// DestroySampler implements gpucore.Device.
func (d *Device) DestroySampler(id gpucore.SamplerID) { delete(d.Samplers, id) }

// CreateShaderModule implements gpucore.Device.
func (d *Device) CreateShaderModule(desc *gpucore.ShaderModuleDescriptor) (gpucore.ShaderModuleID, error) {
	if desc.WGSL == "" {
		return gpucore.InvalidID, fmt.Errorf("gputest: empty shader %q", desc.Label)
	}
	id := gpucore.ShaderModuleID(d.newID())
	d.Shaders[id] = *desc
	return id, nil
}

// DestroyShaderModule implements gpucore.Device.
func (d *Device) DestroyShaderModule(id gpucore.ShaderModuleID) { delete(d.Shaders, id) }

// CreateBindGroupLayout implements gpucore.Device.
func (d *Device) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDescriptor) (gpucore.BindGroupLayoutID, error) {
	id := gpucore.BindGroupLayoutID(d.newID())
	d.Layouts[id] = *desc
	return id, nil
}

// DestroyBindGroupLayout implements gpucore.Device.
func (d *Device) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) { delete(d.Layouts, id) }

// CreatePipelineLayout implements gpucore.Device.
func (d *Device) CreatePipelineLayout(_ string, layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	for _, l := range layouts {
		if _, ok := d.Layouts[l]; !ok {
			return gpucore.InvalidID, fmt.Errorf("gputest: bind group layout %d not found", l)
		}
	}
	id := gpucore.PipelineLayoutID(d.newID())
	d.PipeLayouts[id] = append([]gpucore.BindGroupLayoutID(nil), layouts...)
	return id, nil
}

// DestroyPipelineLayout implements gpucore.Device.
func (d *Device) DestroyPipelineLayout(id gpucore.PipelineLayoutID) { delete(d.PipeLayouts, id) }

// CreateBindGroup implements gpucore.Device.
func (d *Device) CreateBindGroup(desc *gpucore.BindGroupDescriptor) (gpucore.BindGroupID, error) {
	if _, ok := d.Layouts[desc.Layout]; !ok {
		return gpucore.InvalidID, fmt.Errorf("gputest: bind group layout %d not found", desc.Layout)
	}
	for _, e := range desc.Entries {
		switch {
		case e.Buffer != gpucore.InvalidID:
			b, ok := d.Buffers[e.Buffer]
			if !ok {
				return gpucore.InvalidID, fmt.Errorf("gputest: buffer %d not found", e.Buffer)
			}
			if e.Offset+e.Size > b.Desc.Size {
				return gpucore.InvalidID, fmt.Errorf("gputest: binding %d out of range", e.Binding)
			}
		case e.TextureView != gpucore.InvalidID:
			if _, ok := d.Views[e.TextureView]; !ok {
				return gpucore.InvalidID, fmt.Errorf("gputest: view %d not found", e.TextureView)
			}
		case e.Sampler != gpucore.InvalidID:
			if _, ok := d.Samplers[e.Sampler]; !ok {
				return gpucore.InvalidID, fmt.Errorf("gputest: sampler %d not found", e.Sampler)
			}
		}
	}
	id := gpucore.BindGroupID(d.newID())
	d.BindGroups[id] = *desc
	return id, nil
}

// DestroyBindGroup implements gpucore.Device.
func (d *Device) DestroyBindGroup(id gpucore.BindGroupID) { delete(d.BindGroups, id) }

// CreateRenderPipeline implements gpucore.Device.
func (d *Device) CreateRenderPipeline(desc *gpucore.RenderPipelineDescriptor) (gpucore.RenderPipelineID, error) {
	if _, ok := d.Shaders[desc.Module]; !ok {
		return gpucore.InvalidID, fmt.Errorf("gputest: shader module %d not found", desc.Module)
	}
	if _, ok := d.PipeLayouts[desc.Layout]; !ok {
		return gpucore.InvalidID, fmt.Errorf("gputest: pipeline layout %d not found", desc.Layout)
	}
	id := gpucore.RenderPipelineID(d.newID())
	d.Pipelines[id] = *desc
	return id, nil
}

// DestroyRenderPipeline implements gpucore.Device.
func (d *Device) DestroyRenderPipeline(id gpucore.RenderPipelineID) { delete(d.Pipelines, id) }

// Submit applies pending queue writes, then runs the copies recorded in
// enc in order.
func (d *Device) Submit(enc *Encoder) {
	for _, w := range d.pending {
		w()
	}
	d.pending = nil

	for _, c := range enc.Copies {
		src, ok1 := d.Buffers[c.Src]
		dst, ok2 := d.Buffers[c.Dst]
		if !ok1 || !ok2 {
			enc.violate("copy between missing buffers %d -> %d", c.Src, c.Dst)
			continue
		}
		copy(dst.Data[c.DstOffset:c.DstOffset+c.Size], src.Data[c.SrcOffset:c.SrcOffset+c.Size])
	}
}
