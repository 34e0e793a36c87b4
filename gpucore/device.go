package gpucore

import "github.com/gogpu/gputypes"

// Device creates GPU resources and writes to them through the queue.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying a resource while in use by pending work is undefined behavior
//   - IDs become invalid after destruction and are never reused
type Device interface {
	// Limits returns the capabilities of the device.
	Limits() Limits

	// CreateBuffer creates a GPU buffer.
	CreateBuffer(desc *BufferDescriptor) (BufferID, error)

	// DestroyBuffer releases a GPU buffer.
	DestroyBuffer(id BufferID)

	// WriteBuffer schedules a queue write of data at offset. The write
	// happens before any command buffer submitted afterwards.
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// CreateTexture creates a 2D texture.
	CreateTexture(desc *TextureDescriptor) (TextureID, error)

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// WriteTexture schedules a queue write of a texture region.
	WriteTexture(dst *TextureWrite, data []byte)

	// CreateTextureView creates a full view of a texture.
	CreateTextureView(tex TextureID, label string) (TextureViewID, error)

	// DestroyTextureView releases a texture view.
	DestroyTextureView(id TextureViewID)

	// CreateSampler creates a sampler.
	CreateSampler(desc *SamplerDescriptor) (SamplerID, error)

	// DestroySampler releases a sampler.
	DestroySampler(id SamplerID)

	// CreateShaderModule compiles a WGSL shader module.
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModuleID, error)

	// DestroyShaderModule releases a shader module.
	DestroyShaderModule(id ShaderModuleID)

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayoutID, error)

	// DestroyBindGroupLayout releases a bind group layout.
	DestroyBindGroupLayout(id BindGroupLayoutID)

	// CreatePipelineLayout combines bind group layouts into a pipeline layout.
	CreatePipelineLayout(label string, layouts []BindGroupLayoutID) (PipelineLayoutID, error)

	// DestroyPipelineLayout releases a pipeline layout.
	DestroyPipelineLayout(id PipelineLayoutID)

	// CreateBindGroup creates a bind group.
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroupID, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(id BindGroupID)

	// CreateRenderPipeline creates a render pipeline.
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipelineID, error)

	// DestroyRenderPipeline releases a render pipeline.
	DestroyRenderPipeline(id RenderPipelineID)
}

// CommandEncoder records commands for one submission.
//
// The encoder is owned by the caller of the compositor, which submits it
// once the frame has been recorded.
type CommandEncoder interface {
	// CopyBufferToBuffer records a copy between two buffers.
	CopyBufferToBuffer(src BufferID, srcOffset uint64, dst BufferID, dstOffset, size uint64)

	// BeginRenderPass opens a render pass. Only one pass may be open at a
	// time; it must be ended before another command is recorded.
	BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder
}

// RenderPassEncoder records draw commands within a render pass.
//
// The encoder is single-use and cannot be reused after End().
type RenderPassEncoder interface {
	// SetPipeline sets the active render pipeline.
	SetPipeline(pipeline RenderPipelineID)

	// SetBindGroup sets a bind group at the specified index.
	SetBindGroup(index uint32, group BindGroupID)

	// SetVertexBuffer binds a vertex buffer to a slot.
	SetVertexBuffer(slot uint32, buffer BufferID, offset uint64)

	// SetIndexBuffer binds the index buffer for indexed draws.
	SetIndexBuffer(buffer BufferID, format gputypes.IndexFormat, offset uint64)

	// SetScissorRect restricts drawing to a rectangle in pixels.
	SetScissorRect(x, y, width, height uint32)

	// Draw draws non-indexed primitives.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed draws indexed primitives.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End finishes the render pass.
	End()
}

// IsSRGB reports whether writes to a texture of format f are sRGB-encoded.
func IsSRGB(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8UnormSrgb, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}
