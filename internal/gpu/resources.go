package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
)

// UniformAlignment is the offset alignment of uniform buffer bindings.
const UniformAlignment = 256

// matrixSize is the byte size of a 4x4 float32 matrix.
const matrixSize = 64

// pipelineSet is a compiled shader with its layout and render pipeline.
type pipelineSet struct {
	module   gpucore.ShaderModuleID
	layout   gpucore.PipelineLayoutID
	pipeline gpucore.RenderPipelineID
}

type pipelineConfig struct {
	label       string
	wgsl        string
	groups      []gpucore.BindGroupLayoutID
	buffers     []gputypes.VertexBufferLayout
	format      gputypes.TextureFormat
	sampleCount uint32
}

func createPipelineSet(dev gpucore.Device, cfg pipelineConfig) (*pipelineSet, error) {
	module, err := dev.CreateShaderModule(&gpucore.ShaderModuleDescriptor{
		Label: cfg.label + "_shader",
		WGSL:  cfg.wgsl,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: compile %s shader: %w", cfg.label, err)
	}
	layout, err := dev.CreatePipelineLayout(cfg.label+"_layout", cfg.groups)
	if err != nil {
		dev.DestroyShaderModule(module)
		return nil, fmt.Errorf("gpu: create %s pipeline layout: %w", cfg.label, err)
	}
	pipeline, err := dev.CreateRenderPipeline(&gpucore.RenderPipelineDescriptor{
		Label:         cfg.label + "_pipeline",
		Layout:        layout,
		Module:        module,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		Buffers:       cfg.buffers,
		Format:        cfg.format,
		Blend:         gpucore.BlendPremultiplied,
		SampleCount:   max(cfg.sampleCount, 1),
	})
	if err != nil {
		dev.DestroyPipelineLayout(layout)
		dev.DestroyShaderModule(module)
		return nil, fmt.Errorf("gpu: create %s pipeline: %w", cfg.label, err)
	}
	return &pipelineSet{module: module, layout: layout, pipeline: pipeline}, nil
}

func (s *pipelineSet) destroy(dev gpucore.Device) {
	if s == nil {
		return
	}
	dev.DestroyRenderPipeline(s.pipeline)
	dev.DestroyPipelineLayout(s.layout)
	dev.DestroyShaderModule(s.module)
}

func uniformEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer: &gputypes.BufferBindingLayout{
			Type: gputypes.BufferBindingTypeUniform,
		},
	}
}

func textureEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageFragment,
		Texture: &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		},
	}
}

func samplerEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageFragment,
		Sampler: &gputypes.SamplerBindingLayout{
			Type: gputypes.SamplerBindingTypeFiltering,
		},
	}
}

// scissor converts logical clip bounds to a scissor rectangle inside the
// target. ok is false when nothing would be drawn.
func scissor(bounds core.Rectangle, scale float32, target core.SizeU) (core.RectU, bool) {
	r := bounds.Scale(scale).Snap().ClampTo(target)
	return r, r.IsVisible()
}

// putFloats writes vs as little-endian float32 values and returns the
// remainder of dst.
func putFloats(dst []byte, vs ...float32) []byte {
	for _, v := range vs {
		binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
		dst = dst[4:]
	}
	return dst
}

func putMatrix(dst []byte, m core.Transformation) []byte {
	return putFloats(dst, m[:]...)
}

func putUint32s(dst []byte, vs ...uint32) []byte {
	for _, v := range vs {
		binary.LittleEndian.PutUint32(dst, v)
		dst = dst[4:]
	}
	return dst
}
