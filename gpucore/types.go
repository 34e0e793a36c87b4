package gpucore

import "github.com/gogpu/gputypes"

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// TextureViewID is an opaque handle to a texture view.
type TextureViewID uint64

// SamplerID is an opaque handle to a sampler.
type SamplerID uint64

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// BindGroupLayoutID is an opaque handle to a bind group layout.
type BindGroupLayoutID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// PipelineLayoutID is an opaque handle to a pipeline layout.
type PipelineLayoutID uint64

// RenderPipelineID is an opaque handle to a render pipeline.
type RenderPipelineID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// Limits reports device capabilities the pipelines size resources against.
type Limits struct {
	// MaxTextureDimension2D bounds image uploads; larger images are
	// downsampled.
	MaxTextureDimension2D uint32

	// MaxBufferSize bounds every buffer allocation.
	MaxBufferSize uint64
}

// DefaultLimits returns the WebGPU baseline limits.
func DefaultLimits() Limits {
	return Limits{
		MaxTextureDimension2D: 8192,
		MaxBufferSize:         256 << 20,
	}
}

// BufferDescriptor describes a buffer.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// TextureDescriptor describes a 2D texture.
type TextureDescriptor struct {
	Label       string
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	Usage       gputypes.TextureUsage
	SampleCount uint32
}

// TextureWrite describes a region of a texture to overwrite.
type TextureWrite struct {
	Texture     TextureID
	X, Y        uint32
	Width       uint32
	Height      uint32
	BytesPerRow uint32
}

// FilterMode selects texel filtering for a sampler.
type FilterMode uint8

// Filter modes.
const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// SamplerDescriptor describes a clamp-to-edge sampler.
type SamplerDescriptor struct {
	Label  string
	Filter FilterMode
}

// ShaderModuleDescriptor describes a shader module. Devices compile the WGSL
// source into whatever their backend consumes.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []gputypes.BindGroupLayoutEntry
}

// BindGroupEntry describes a single binding in a bind group. Exactly one of
// Buffer, TextureView or Sampler is set.
type BindGroupEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Buffer is the buffer to bind (for buffer bindings).
	Buffer BufferID

	// Offset is the offset into the buffer.
	Offset uint64

	// Size is the size of the buffer range to bind.
	// Use 0 to bind the entire buffer from offset.
	Size uint64

	// TextureView is the view to bind (for texture bindings).
	TextureView TextureViewID

	// Sampler is the sampler to bind (for sampler bindings).
	Sampler SamplerID
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayoutID
	Entries []BindGroupEntry
}

// BlendMode selects the color blending of a render pipeline.
type BlendMode uint8

// Blend modes.
const (
	// BlendPremultiplied composites premultiplied colors over the target.
	BlendPremultiplied BlendMode = iota

	// BlendReplace overwrites the target.
	BlendReplace
)

// RenderPipelineDescriptor describes a render pipeline with one color target
// and a triangle-list topology.
type RenderPipelineDescriptor struct {
	Label         string
	Layout        PipelineLayoutID
	Module        ShaderModuleID
	VertexEntry   string
	FragmentEntry string
	Buffers       []gputypes.VertexBufferLayout
	Format        gputypes.TextureFormat
	Blend         BlendMode
	SampleCount   uint32
}

// RenderPassDescriptor describes a render pass with one color attachment.
type RenderPassDescriptor struct {
	Label string

	// Target is the attachment drawn into.
	Target TextureViewID

	// ResolveTarget receives the resolved samples of a multisampled Target.
	ResolveTarget TextureViewID

	// LoadOp is gputypes.LoadOpClear or gputypes.LoadOpLoad.
	LoadOp gputypes.LoadOp

	// ClearValue is used when LoadOp is gputypes.LoadOpClear.
	ClearValue gputypes.Color
}
