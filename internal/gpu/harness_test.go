package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
	"github.com/gogpu/compositor/internal/gputest"
)

const testFormat = gputypes.TextureFormatBGRA8Unorm

// harness is one frame on a recording device.
type harness struct {
	dev   *gputest.Device
	enc   *gputest.Encoder
	belt  *StagingBelt
	frame *Frame
	view  gpucore.TextureViewID
}

func newHarness(t *testing.T, width, height uint32, scale float64) *harness {
	t.Helper()
	dev := gputest.NewDevice()
	belt, err := NewStagingBelt(dev, 0)
	if err != nil {
		t.Fatalf("NewStagingBelt() error = %v", err)
	}
	h := &harness{dev: dev, belt: belt, view: dev.NewTargetView(width, height)}
	h.next(core.NewViewport(core.SizeU{Width: width, Height: height}, scale))
	return h
}

// next starts a new frame with a fresh encoder.
func (h *harness) next(vp core.Viewport) {
	h.enc = gputest.NewEncoder()
	h.frame = &Frame{Encoder: h.enc, Belt: h.belt, Viewport: vp}
}

func (h *harness) submit() {
	h.belt.Finish()
	h.dev.Submit(h.enc)
	h.belt.Recall()
}

func (h *harness) target() Target {
	return Target{View: h.view, Size: h.frame.Viewport.PhysicalSize()}
}

func (h *harness) pass() gpucore.RenderPassEncoder {
	return h.enc.BeginRenderPass(&gpucore.RenderPassDescriptor{
		Label:  "test",
		Target: h.view,
		LoadOp: gputypes.LoadOpClear,
	})
}

func floatAt(data []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
}

func uint32At(data []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(data[i*4:])
}
