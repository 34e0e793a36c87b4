package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compositor/gpucore"
)

// Encoder implements gpucore.CommandEncoder on a HAL command encoder.
//
// Commands naming unknown resources are dropped and the first such error
// is returned by Device.Submit.
type Encoder struct {
	dev       *Device
	raw       hal.CommandEncoder
	label     string
	err       error
	submitted bool
	passes    int
}

var _ gpucore.CommandEncoder = (*Encoder)(nil)

// NewEncoder creates an encoder ready to record.
func (d *Device) NewEncoder(label string) (*Encoder, error) {
	raw, err := d.raw.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("native: create encoder %q: %w", label, err)
	}
	if err := raw.BeginEncoding(label); err != nil {
		raw.Destroy()
		return nil, fmt.Errorf("native: begin encoding %q: %w", label, err)
	}
	return &Encoder{dev: d, raw: raw, label: label}, nil
}

func (e *Encoder) setError(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Passes returns the number of render passes recorded.
func (e *Encoder) Passes() int { return e.passes }

// CopyBufferToBuffer implements gpucore.CommandEncoder.
func (e *Encoder) CopyBufferToBuffer(src gpucore.BufferID, srcOffset uint64, dst gpucore.BufferID, dstOffset, size uint64) {
	if e.submitted {
		e.setError(ErrEncoderSubmitted)
		return
	}
	e.dev.mu.Lock()
	s, err1 := lookup(e.dev.buffers, src, "buffer")
	t, err2 := lookup(e.dev.buffers, dst, "buffer")
	e.dev.mu.Unlock()
	if err1 != nil || err2 != nil {
		e.setError(fmt.Errorf("native: copy %d -> %d: %w", src, dst, ErrUnknownResource))
		return
	}
	e.raw.CopyBufferToBuffer(s, t, []hal.BufferCopy{{SrcOffset: srcOffset, DstOffset: dstOffset, Size: size}})
}

// BeginRenderPass implements gpucore.CommandEncoder.
func (e *Encoder) BeginRenderPass(desc *gpucore.RenderPassDescriptor) gpucore.RenderPassEncoder {
	p := &passEncoder{enc: e}
	if e.submitted {
		e.setError(ErrEncoderSubmitted)
		return p
	}

	e.dev.mu.Lock()
	target, err := lookup(e.dev.views, desc.Target, "texture view")
	var resolve hal.TextureView
	if err == nil && desc.ResolveTarget != gpucore.InvalidID {
		var v *view
		v, err = lookup(e.dev.views, desc.ResolveTarget, "texture view")
		if err == nil {
			resolve = v.raw
		}
	}
	e.dev.mu.Unlock()
	if err != nil {
		e.setError(fmt.Errorf("native: pass %q: %w", desc.Label, err))
		return p
	}

	p.raw = e.raw.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          target.raw,
			ResolveTarget: resolve,
			LoadOp:        desc.LoadOp,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    desc.ClearValue,
		}},
	})
	e.passes++
	return p
}

// Submit finishes enc, submits it and waits for the GPU to execute it.
// The encoder cannot be used afterwards.
func (d *Device) Submit(enc *Encoder) error {
	if enc.submitted {
		return ErrEncoderSubmitted
	}
	enc.submitted = true
	if enc.err != nil {
		enc.raw.DiscardEncoding()
		enc.raw.Destroy()
		return enc.err
	}

	cmd, err := enc.raw.EndEncoding()
	if err != nil {
		enc.raw.Destroy()
		return fmt.Errorf("native: end encoding %q: %w", enc.label, err)
	}
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		enc.raw.ResetAll([]hal.CommandBuffer{cmd})
		enc.raw.Destroy()
		return fmt.Errorf("native: submit %q: %w", enc.label, err)
	}
	if err := d.raw.WaitIdle(); err != nil {
		return fmt.Errorf("native: wait %q: %w", enc.label, err)
	}
	enc.raw.ResetAll([]hal.CommandBuffer{cmd})
	enc.raw.Destroy()
	return d.Err()
}

// passEncoder implements gpucore.RenderPassEncoder. A pass whose target
// could not be resolved has no raw encoder and records nothing.
type passEncoder struct {
	enc *Encoder
	raw hal.RenderPassEncoder
}

func (p *passEncoder) SetPipeline(pipeline gpucore.RenderPipelineID) {
	if p.raw == nil {
		return
	}
	p.enc.dev.mu.Lock()
	raw, err := lookup(p.enc.dev.pipelines, pipeline, "render pipeline")
	p.enc.dev.mu.Unlock()
	if err != nil {
		p.enc.setError(err)
		return
	}
	p.raw.SetPipeline(raw)
}

func (p *passEncoder) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	if p.raw == nil {
		return
	}
	p.enc.dev.mu.Lock()
	raw, err := lookup(p.enc.dev.groups, group, "bind group")
	p.enc.dev.mu.Unlock()
	if err != nil {
		p.enc.setError(err)
		return
	}
	p.raw.SetBindGroup(index, raw, nil)
}

func (p *passEncoder) SetVertexBuffer(slot uint32, buffer gpucore.BufferID, offset uint64) {
	if p.raw == nil {
		return
	}
	p.enc.dev.mu.Lock()
	raw, err := lookup(p.enc.dev.buffers, buffer, "buffer")
	p.enc.dev.mu.Unlock()
	if err != nil {
		p.enc.setError(err)
		return
	}
	p.raw.SetVertexBuffer(slot, raw, offset)
}

func (p *passEncoder) SetIndexBuffer(buffer gpucore.BufferID, format gputypes.IndexFormat, offset uint64) {
	if p.raw == nil {
		return
	}
	p.enc.dev.mu.Lock()
	raw, err := lookup(p.enc.dev.buffers, buffer, "buffer")
	p.enc.dev.mu.Unlock()
	if err != nil {
		p.enc.setError(err)
		return
	}
	p.raw.SetIndexBuffer(raw, format, offset)
}

func (p *passEncoder) SetScissorRect(x, y, width, height uint32) {
	if p.raw != nil {
		p.raw.SetScissorRect(x, y, width, height)
	}
}

func (p *passEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if p.raw != nil {
		p.raw.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	}
}

func (p *passEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if p.raw != nil {
		p.raw.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	}
}

func (p *passEncoder) End() {
	if p.raw != nil {
		p.raw.End()
		p.raw = nil
	}
}
