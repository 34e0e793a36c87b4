package gputest

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/gpucore"
)

// Copy is a recorded buffer-to-buffer copy.
type Copy struct {
	Src       gpucore.BufferID
	SrcOffset uint64
	Dst       gpucore.BufferID
	DstOffset uint64
	Size      uint64

	// AfterPasses is the number of passes begun before the copy.
	AfterPasses int
}

// Draw is a recorded draw call with the state it was issued with.
type Draw struct {
	Pipeline      gpucore.RenderPipelineID
	BindGroups    [4]gpucore.BindGroupID
	VertexBuffers [2]gpucore.BufferID
	IndexBuffer   gpucore.BufferID
	IndexFormat   gputypes.IndexFormat
	Scissor       [4]uint32

	Indexed       bool
	Count         uint32
	Instances     uint32
	First         uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Pass is a recorded render pass.
type Pass struct {
	Desc  gpucore.RenderPassDescriptor
	Draws []Draw
	Ended bool

	state Draw
}

// Encoder is a recording gpucore.CommandEncoder.
type Encoder struct {
	Copies []Copy
	Passes []*Pass

	// Violations lists misuse such as nested passes or copies inside a
	// pass.
	Violations []string

	open *Pass
}

var _ gpucore.CommandEncoder = (*Encoder)(nil)

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) violate(format string, args ...any) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// CopyBufferToBuffer implements gpucore.CommandEncoder.
func (e *Encoder) CopyBufferToBuffer(src gpucore.BufferID, srcOffset uint64, dst gpucore.BufferID, dstOffset, size uint64) {
	if e.open != nil {
		e.violate("copy recorded inside pass %q", e.open.Desc.Label)
	}
	if srcOffset%4 != 0 || dstOffset%4 != 0 || size%4 != 0 {
		e.violate("unaligned copy %d@%d -> %d@%d", size, srcOffset, size, dstOffset)
	}
	e.Copies = append(e.Copies, Copy{
		Src: src, SrcOffset: srcOffset,
		Dst: dst, DstOffset: dstOffset,
		Size:        size,
		AfterPasses: len(e.Passes),
	})
}

// BeginRenderPass implements gpucore.CommandEncoder.
func (e *Encoder) BeginRenderPass(desc *gpucore.RenderPassDescriptor) gpucore.RenderPassEncoder {
	if e.open != nil {
		e.violate("pass %q begun while %q is open", desc.Label, e.open.Desc.Label)
	}
	p := &Pass{Desc: *desc}
	e.Passes = append(e.Passes, p)
	e.open = p
	return &passEncoder{enc: e, pass: p}
}

// Open reports whether a pass is currently open.
func (e *Encoder) Open() bool {
	return e.open != nil
}

// DrawCount returns the number of draws across all passes.
func (e *Encoder) DrawCount() int {
	n := 0
	for _, p := range e.Passes {
		n += len(p.Draws)
	}
	return n
}

// PassLabels returns the labels of all passes in order.
func (e *Encoder) PassLabels() []string {
	labels := make([]string, len(e.Passes))
	for i, p := range e.Passes {
		labels[i] = p.Desc.Label
	}
	return labels
}

type passEncoder struct {
	enc  *Encoder
	pass *Pass
}

func (p *passEncoder) check(op string) bool {
	if p.pass.Ended {
		p.enc.violate("%s on ended pass %q", op, p.pass.Desc.Label)
		return false
	}
	return true
}

func (p *passEncoder) SetPipeline(pipeline gpucore.RenderPipelineID) {
	if p.check("SetPipeline") {
		p.pass.state.Pipeline = pipeline
	}
}

func (p *passEncoder) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	if p.check("SetBindGroup") && index < 4 {
		p.pass.state.BindGroups[index] = group
	}
}

func (p *passEncoder) SetVertexBuffer(slot uint32, buffer gpucore.BufferID, _ uint64) {
	if p.check("SetVertexBuffer") && slot < 2 {
		p.pass.state.VertexBuffers[slot] = buffer
	}
}

func (p *passEncoder) SetIndexBuffer(buffer gpucore.BufferID, format gputypes.IndexFormat, _ uint64) {
	if p.check("SetIndexBuffer") {
		p.pass.state.IndexBuffer = buffer
		p.pass.state.IndexFormat = format
	}
}

func (p *passEncoder) SetScissorRect(x, y, width, height uint32) {
	if p.check("SetScissorRect") {
		p.pass.state.Scissor = [4]uint32{x, y, width, height}
	}
}

func (p *passEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if !p.check("Draw") {
		return
	}
	d := p.pass.state
	d.Count = vertexCount
	d.Instances = instanceCount
	d.First = firstVertex
	d.FirstInstance = firstInstance
	p.pass.Draws = append(p.pass.Draws, d)
}

func (p *passEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if !p.check("DrawIndexed") {
		return
	}
	d := p.pass.state
	d.Indexed = true
	d.Count = indexCount
	d.Instances = instanceCount
	d.First = firstIndex
	d.BaseVertex = baseVertex
	d.FirstInstance = firstInstance
	p.pass.Draws = append(p.pass.Draws, d)
}

func (p *passEncoder) End() {
	if !p.check("End") {
		return
	}
	p.pass.Ended = true
	if p.enc.open == p.pass {
		p.enc.open = nil
	}
}
