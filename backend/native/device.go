package native

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compositor/gpucore"
)

// Device implements gpucore.Device on a HAL device and queue.
//
// Device is safe for concurrent use, but the compositor drives it from a
// single goroutine.
type Device struct {
	mu     sync.Mutex
	raw    hal.Device
	queue  hal.Queue
	limits gpucore.Limits
	owned  bool
	nextID uint64
	errs   []error

	buffers      map[gpucore.BufferID]hal.Buffer
	textures     map[gpucore.TextureID]*texture
	views        map[gpucore.TextureViewID]*view
	samplers     map[gpucore.SamplerID]hal.Sampler
	shaders      map[gpucore.ShaderModuleID]hal.ShaderModule
	groupLayouts map[gpucore.BindGroupLayoutID]hal.BindGroupLayout
	pipeLayouts  map[gpucore.PipelineLayoutID]hal.PipelineLayout
	groups       map[gpucore.BindGroupID]hal.BindGroup
	pipelines    map[gpucore.RenderPipelineID]hal.RenderPipeline
}

type texture struct {
	raw    hal.Texture
	format gputypes.TextureFormat
}

type view struct {
	raw hal.TextureView

	// imported views belong to the caller and are never destroyed here.
	imported bool
}

var _ gpucore.Device = (*Device)(nil)

// NewDevice wraps a HAL device and its queue. The caller keeps ownership
// of raw: Release destroys the resources created through the Device but
// not the HAL device itself.
func NewDevice(raw hal.Device, queue hal.Queue, limits gputypes.Limits) *Device {
	l := gpucore.DefaultLimits()
	if limits.MaxTextureDimension2D > 0 {
		l.MaxTextureDimension2D = limits.MaxTextureDimension2D
	}
	if limits.MaxBufferSize > 0 {
		l.MaxBufferSize = limits.MaxBufferSize
	}
	return &Device{
		raw:          raw,
		queue:        queue,
		limits:       l,
		buffers:      make(map[gpucore.BufferID]hal.Buffer),
		textures:     make(map[gpucore.TextureID]*texture),
		views:        make(map[gpucore.TextureViewID]*view),
		samplers:     make(map[gpucore.SamplerID]hal.Sampler),
		shaders:      make(map[gpucore.ShaderModuleID]hal.ShaderModule),
		groupLayouts: make(map[gpucore.BindGroupLayoutID]hal.BindGroupLayout),
		pipeLayouts:  make(map[gpucore.PipelineLayoutID]hal.PipelineLayout),
		groups:       make(map[gpucore.BindGroupID]hal.BindGroup),
		pipelines:    make(map[gpucore.RenderPipelineID]hal.RenderPipeline),
	}
}

// HAL returns the wrapped HAL device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	return d.raw, d.queue
}

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

func lookup[K comparable, V any](m map[K]V, id K, kind string) (V, error) {
	v, ok := m[id]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: %s %v", ErrUnknownResource, kind, id)
	}
	return v, nil
}

// fail records an error from an operation that cannot return one.
// The caller must hold d.mu.
func (d *Device) fail(err error) {
	d.errs = append(d.errs, err)
}

// Err returns the errors recorded by queue writes since the last call and
// clears them.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := errors.Join(d.errs...)
	d.errs = nil
	return err
}

// Limits implements gpucore.Device.
func (d *Device) Limits() gpucore.Limits { return d.limits }

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDescriptor) (gpucore.BufferID, error) {
	raw, err := d.raw.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create buffer %q: %w", desc.Label, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.BufferID(d.newID())
	d.buffers[id] = raw
	return id, nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if raw, ok := d.buffers[id]; ok {
		d.raw.DestroyBuffer(raw)
		delete(d.buffers, id)
	}
}

// WriteBuffer implements gpucore.Device.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := lookup(d.buffers, id, "buffer")
	if err != nil {
		d.fail(err)
		return
	}
	if err := d.queue.WriteBuffer(raw, offset, data); err != nil {
		d.fail(fmt.Errorf("native: write buffer %d: %w", id, err))
	}
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDescriptor) (gpucore.TextureID, error) {
	raw, err := d.raw.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.TextureID(d.newID())
	d.textures[id] = &texture{raw: raw, format: desc.Format}
	return id, nil
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.textures[id]; ok {
		d.raw.DestroyTexture(t.raw)
		delete(d.textures, id)
	}
}

// WriteTexture implements gpucore.Device.
func (d *Device) WriteTexture(dst *gpucore.TextureWrite, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := lookup(d.textures, dst.Texture, "texture")
	if err != nil {
		d.fail(err)
		return
	}
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture: t.raw,
			Origin:  hal.Origin3D{X: dst.X, Y: dst.Y},
			Aspect:  gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{BytesPerRow: dst.BytesPerRow, RowsPerImage: dst.Height},
		&hal.Extent3D{Width: dst.Width, Height: dst.Height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		d.fail(fmt.Errorf("native: write texture %d: %w", dst.Texture, err))
	}
}

// CreateTextureView implements gpucore.Device.
func (d *Device) CreateTextureView(tex gpucore.TextureID, label string) (gpucore.TextureViewID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := lookup(d.textures, tex, "texture")
	if err != nil {
		return gpucore.InvalidID, err
	}
	raw, err := d.raw.CreateTextureView(t.raw, &hal.TextureViewDescriptor{
		Label:           label,
		Format:          t.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create view %q: %w", label, err)
	}
	id := gpucore.TextureViewID(d.newID())
	d.views[id] = &view{raw: raw}
	return id, nil
}

// ImportView registers a view owned by the caller, such as the current
// surface texture, so it can be used as a render target. Destroying the
// returned ID forgets the view without destroying it.
func (d *Device) ImportView(raw hal.TextureView) gpucore.TextureViewID {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.TextureViewID(d.newID())
	d.views[id] = &view{raw: raw, imported: true}
	return id
}

// DestroyTextureView implements gpucore.Device.
func (d *Device) DestroyTextureView(id gpucore.TextureViewID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := d.views[id]; ok {
		if !v.imported {
			d.raw.DestroyTextureView(v.raw)
		}
		delete(d.views, id)
	}
}

// CreateSampler implements gpucore.Device.
func (d *Device) CreateSampler(desc *gpucore.SamplerDescriptor) (gpucore.SamplerID, error) {
	filter := gputypes.FilterModeLinear
	if desc.Filter == gpucore.FilterNearest {
		filter = gputypes.FilterModeNearest
	}
	raw, err := d.raw.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
		Anisotropy:   1,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create sampler %q: %w", desc.Label, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.SamplerID(d.newID())
	d.samplers[id] = raw
	return id, nil
}

// DestroySampler implements gpucore.Device.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if raw, ok := d.samplers[id]; ok {
		d.raw.DestroySampler(raw)
		delete(d.samplers, id)
	}
}

// CreateShaderModule implements gpucore.Device. The WGSL source is compiled
// to SPIR-V; both are handed to the HAL, which picks what its backend
// consumes.
func (d *Device) CreateShaderModule(desc *gpucore.ShaderModuleDescriptor) (gpucore.ShaderModuleID, error) {
	spirv, err := CompileWGSL(desc.WGSL)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: shader %q: %w", desc.Label, err)
	}
	raw, err := d.raw.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{WGSL: desc.WGSL, SPIRV: spirv},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create shader %q: %w", desc.Label, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.ShaderModuleID(d.newID())
	d.shaders[id] = raw
	return id, nil
}

// DestroyShaderModule implements gpucore.Device.
func (d *Device) DestroyShaderModule(id gpucore.ShaderModuleID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if raw, ok := d.shaders[id]; ok {
		d.raw.DestroyShaderModule(raw)
		delete(d.shaders, id)
	}
}

// CreateBindGroupLayout implements gpucore.Device.
func (d *Device) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDescriptor) (gpucore.BindGroupLayoutID, error) {
	raw, err := d.raw.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: desc.Entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create bind group layout %q: %w", desc.Label, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpucore.BindGroupLayoutID(d.newID())
	d.groupLayouts[id] = raw
	return id, nil
}

// DestroyBindGroupLayout implements gpucore.Device.
func (d *Device) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if raw, ok := d.groupLayouts[id]; ok {
		d.raw.DestroyBindGroupLayout(raw)
		delete(d.groupLayouts, id)
	}
}

// CreatePipelineLayout implements gpucore.Device.
func (d *Device) CreatePipelineLayout(label string, layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raws := make([]hal.BindGroupLayout, len(layouts))
	for i, l := range layouts {
		raw, err := lookup(d.groupLayouts, l, "bind group layout")
		if err != nil {
			return gpucore.InvalidID, err
		}
		raws[i] = raw
	}
	raw, err := d.raw.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: raws,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create pipeline layout %q: %w", label, err)
	}
	id := gpucore.PipelineLayoutID(d.newID())
	d.pipeLayouts[id] = raw
	return id, nil
}

// DestroyPipelineLayout implements gpucore.Device.
func (d *Device) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if raw, ok := d.pipeLayouts[id]; ok {
		d.raw.DestroyPipelineLayout(raw)
		delete(d.pipeLayouts, id)
	}
}

// CreateBindGroup implements gpucore.Device.
func (d *Device) CreateBindGroup(desc *gpucore.BindGroupDescriptor) (gpucore.BindGroupID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	layout, err := lookup(d.groupLayouts, desc.Layout, "bind group layout")
	if err != nil {
		return gpucore.InvalidID, err
	}
	entries := make([]gputypes.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		res, err := d.bindingResource(e)
		if err != nil {
			return gpucore.InvalidID, fmt.Errorf("native: bind group %q binding %d: %w", desc.Label, e.Binding, err)
		}
		entries[i] = gputypes.BindGroupEntry{Binding: e.Binding, Resource: res}
	}
	raw, err := d.raw.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create bind group %q: %w", desc.Label, err)
	}
	id := gpucore.BindGroupID(d.newID())
	d.groups[id] = raw
	return id, nil
}

// bindingResource resolves the resource of one bind group entry.
// The caller must hold d.mu.
func (d *Device) bindingResource(e gpucore.BindGroupEntry) (gputypes.BindingResource, error) {
	switch {
	case e.Buffer != gpucore.InvalidID:
		raw, err := lookup(d.buffers, e.Buffer, "buffer")
		if err != nil {
			return nil, err
		}
		return gputypes.BufferBinding{Buffer: raw.NativeHandle(), Offset: e.Offset, Size: e.Size}, nil
	case e.TextureView != gpucore.InvalidID:
		v, err := lookup(d.views, e.TextureView, "texture view")
		if err != nil {
			return nil, err
		}
		return gputypes.TextureViewBinding{TextureView: v.raw.NativeHandle()}, nil
	case e.Sampler != gpucore.InvalidID:
		raw, err := lookup(d.samplers, e.Sampler, "sampler")
		if err != nil {
			return nil, err
		}
		return gputypes.SamplerBinding{Sampler: raw.NativeHandle()}, nil
	}
	return nil, fmt.Errorf("%w: empty entry", ErrUnknownResource)
}

// DestroyBindGroup implements gpucore.Device.
func (d *Device) DestroyBindGroup(id gpucore.BindGroupID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if raw, ok := d.groups[id]; ok {
		d.raw.DestroyBindGroup(raw)
		delete(d.groups, id)
	}
}

// CreateRenderPipeline implements gpucore.Device.
func (d *Device) CreateRenderPipeline(desc *gpucore.RenderPipelineDescriptor) (gpucore.RenderPipelineID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	module, err := lookup(d.shaders, desc.Module, "shader module")
	if err != nil {
		return gpucore.InvalidID, err
	}
	layout, err := lookup(d.pipeLayouts, desc.Layout, "pipeline layout")
	if err != nil {
		return gpucore.InvalidID, err
	}

	blend := gputypes.BlendStatePremultiplied()
	if desc.Blend == gpucore.BlendReplace {
		blend = gputypes.BlendStateReplace()
	}
	raw, err := d.raw.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntry,
			Buffers:    desc.Buffers,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: max(desc.SampleCount, 1),
			Mask:  ^uint64(0),
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    desc.Format,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create pipeline %q: %w", desc.Label, err)
	}
	id := gpucore.RenderPipelineID(d.newID())
	d.pipelines[id] = raw
	return id, nil
}

// DestroyRenderPipeline implements gpucore.Device.
func (d *Device) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if raw, ok := d.pipelines[id]; ok {
		d.raw.DestroyRenderPipeline(raw)
		delete(d.pipelines, id)
	}
}

// Live returns the number of resources created through the device and not
// yet destroyed, imported views excluded.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.buffers) + len(d.textures) + len(d.samplers) + len(d.shaders) +
		len(d.groupLayouts) + len(d.pipeLayouts) + len(d.groups) + len(d.pipelines)
	for _, v := range d.views {
		if !v.imported {
			n++
		}
	}
	return n
}

// Release destroys every resource still alive, dependents first. The HAL
// device is destroyed too when it was opened by this package.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, raw := range d.pipelines {
		d.raw.DestroyRenderPipeline(raw)
		delete(d.pipelines, id)
	}
	for id, raw := range d.groups {
		d.raw.DestroyBindGroup(raw)
		delete(d.groups, id)
	}
	for id, raw := range d.pipeLayouts {
		d.raw.DestroyPipelineLayout(raw)
		delete(d.pipeLayouts, id)
	}
	for id, raw := range d.groupLayouts {
		d.raw.DestroyBindGroupLayout(raw)
		delete(d.groupLayouts, id)
	}
	for id, raw := range d.shaders {
		d.raw.DestroyShaderModule(raw)
		delete(d.shaders, id)
	}
	for id, raw := range d.samplers {
		d.raw.DestroySampler(raw)
		delete(d.samplers, id)
	}
	for id, v := range d.views {
		if !v.imported {
			d.raw.DestroyTextureView(v.raw)
		}
		delete(d.views, id)
	}
	for id, t := range d.textures {
		d.raw.DestroyTexture(t.raw)
		delete(d.textures, id)
	}
	for id, raw := range d.buffers {
		d.raw.DestroyBuffer(raw)
		delete(d.buffers, id)
	}

	if d.owned {
		d.raw.Destroy()
	}
}
