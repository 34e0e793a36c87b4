package backend

import "github.com/gogpu/wgpu/hal/noop"

func init() {
	Register(NameNoop, noop.API{})
}
