package compositor

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
)

type passState uint8

const (
	passClosed passState = iota
	passOpen
)

// framePass is the compositor's render pass on the frame target. Meshes
// and custom primitives record passes of their own, so the pass is closed
// before them and reopened, loading the target, afterwards.
type framePass struct {
	enc    gpucore.CommandEncoder
	target gpucore.TextureViewID
	state  passState
	pass   gpucore.RenderPassEncoder
	opened int
}

// open begins the pass, clearing the target to clear when it is not nil.
func (p *framePass) open(clear *gputypes.Color) {
	desc := &gpucore.RenderPassDescriptor{
		Label:  "compositor",
		Target: p.target,
		LoadOp: gputypes.LoadOpLoad,
	}
	if clear != nil {
		desc.LoadOp = gputypes.LoadOpClear
		desc.ClearValue = *clear
	}
	p.pass = p.enc.BeginRenderPass(desc)
	p.state = passOpen
	p.opened++
}

// encoder returns the open pass.
func (p *framePass) encoder() gpucore.RenderPassEncoder {
	return p.pass
}

func (p *framePass) closeForMesh() { p.close() }

func (p *framePass) closeForCustom() { p.close() }

func (p *framePass) reopenWithLoad() { p.open(nil) }

// close ends the pass if it is open.
func (p *framePass) close() {
	if p.state != passOpen {
		return
	}
	p.pass.End()
	p.pass = nil
	p.state = passClosed
}

// clearValue converts a clear color for a target, premultiplying alpha.
func clearValue(c core.Color, srgb bool) gputypes.Color {
	v := c.Pack(srgb)
	return gputypes.Color{
		R: float64(v[0] * v[3]),
		G: float64(v[1] * v[3]),
		B: float64(v[2] * v[3]),
		A: float64(v[3]),
	}
}
