package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
)

// msaaTargets are the intermediate textures of multisampled mesh drawing,
// sized to the render target.
type msaaTargets struct {
	size        core.SizeU
	texture     gpucore.TextureID
	view        gpucore.TextureViewID
	resolve     gpucore.TextureID
	resolveView gpucore.TextureViewID
	group       gpucore.BindGroupID
}

func (p *TrianglePipeline) ensureMSAA(size core.SizeU) error {
	if p.msaa != nil && p.msaa.size == size {
		return nil
	}
	p.msaa.destroy(p.dev)
	p.msaa = nil

	t := &msaaTargets{size: size}
	var err error
	t.texture, err = p.dev.CreateTexture(&gpucore.TextureDescriptor{
		Label:       "triangle_msaa",
		Width:       size.Width,
		Height:      size.Height,
		Format:      p.format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		SampleCount: p.samples,
	})
	if err != nil {
		return fmt.Errorf("gpu: create msaa texture: %w", err)
	}
	if t.view, err = p.dev.CreateTextureView(t.texture, "triangle_msaa_view"); err != nil {
		t.destroy(p.dev)
		return fmt.Errorf("gpu: create msaa view: %w", err)
	}
	t.resolve, err = p.dev.CreateTexture(&gpucore.TextureDescriptor{
		Label:       "triangle_resolve",
		Width:       size.Width,
		Height:      size.Height,
		Format:      p.format,
		Usage:       gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
		SampleCount: 1,
	})
	if err != nil {
		t.destroy(p.dev)
		return fmt.Errorf("gpu: create resolve texture: %w", err)
	}
	if t.resolveView, err = p.dev.CreateTextureView(t.resolve, "triangle_resolve_view"); err != nil {
		t.destroy(p.dev)
		return fmt.Errorf("gpu: create resolve view: %w", err)
	}
	if t.group, err = p.blit.bind(p.dev, t.resolveView); err != nil {
		t.destroy(p.dev)
		return err
	}
	slogger().Debug("msaa targets created", "width", size.Width, "height", size.Height, "samples", p.samples)
	p.msaa = t
	return nil
}

func (t *msaaTargets) destroy(dev gpucore.Device) {
	if t == nil {
		return
	}
	if t.group != gpucore.InvalidID {
		dev.DestroyBindGroup(t.group)
	}
	if t.resolveView != gpucore.InvalidID {
		dev.DestroyTextureView(t.resolveView)
	}
	if t.resolve != gpucore.InvalidID {
		dev.DestroyTexture(t.resolve)
	}
	if t.view != gpucore.InvalidID {
		dev.DestroyTextureView(t.view)
	}
	if t.texture != gpucore.InvalidID {
		dev.DestroyTexture(t.texture)
	}
}

// blitPipeline copies a premultiplied texture onto the target with blending.
type blitPipeline struct {
	set     *pipelineSet
	layout  gpucore.BindGroupLayoutID
	sampler gpucore.SamplerID
}

func newBlitPipeline(dev gpucore.Device, format gputypes.TextureFormat) (*blitPipeline, error) {
	sampler, err := dev.CreateSampler(&gpucore.SamplerDescriptor{Label: "blit_sampler", Filter: gpucore.FilterNearest})
	if err != nil {
		return nil, fmt.Errorf("gpu: create blit sampler: %w", err)
	}
	layout, err := dev.CreateBindGroupLayout(&gpucore.BindGroupLayoutDescriptor{
		Label:   "blit_layout",
		Entries: []gputypes.BindGroupLayoutEntry{textureEntry(0), samplerEntry(1)},
	})
	if err != nil {
		dev.DestroySampler(sampler)
		return nil, fmt.Errorf("gpu: create blit bind group layout: %w", err)
	}
	set, err := createPipelineSet(dev, pipelineConfig{
		label:  "blit",
		wgsl:   blitShaderSource,
		groups: []gpucore.BindGroupLayoutID{layout},
		format: format,
	})
	if err != nil {
		dev.DestroyBindGroupLayout(layout)
		dev.DestroySampler(sampler)
		return nil, err
	}
	return &blitPipeline{set: set, layout: layout, sampler: sampler}, nil
}

func (b *blitPipeline) bind(dev gpucore.Device, view gpucore.TextureViewID) (gpucore.BindGroupID, error) {
	g, err := dev.CreateBindGroup(&gpucore.BindGroupDescriptor{
		Label:  "blit_group",
		Layout: b.layout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: b.sampler},
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpu: create blit bind group: %w", err)
	}
	return g, nil
}

func (b *blitPipeline) draw(pass gpucore.RenderPassEncoder, group gpucore.BindGroupID, bounds core.RectU) {
	pass.SetPipeline(b.set.pipeline)
	pass.SetScissorRect(bounds.X, bounds.Y, bounds.Width, bounds.Height)
	pass.SetBindGroup(0, group)
	pass.Draw(3, 1, 0, 0)
}

func (b *blitPipeline) destroy(dev gpucore.Device) {
	if b == nil {
		return
	}
	b.set.destroy(dev)
	dev.DestroyBindGroupLayout(b.layout)
	dev.DestroySampler(b.sampler)
}
