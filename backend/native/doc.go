// Package native runs the compositor on a gogpu/wgpu HAL device.
//
// Device adapts a hal.Device and its queue to the gpucore interfaces the
// compositor pipelines are written against. Resource handles are mapped to
// gpucore IDs; WGSL shaders are compiled to SPIR-V with naga before the HAL
// sees them.
//
//	dev := native.NewDevice(open.Device, open.Queue, limits)
//	b, err := compositor.New(dev, format)
//
//	enc, err := dev.NewEncoder("frame")
//	err = b.Present(enc, &core.Black, view, vp, primitives, nil)
//	err = dev.Submit(enc)
//	b.Recall()
//
// Devices owned by a gogpu application are reached through FromProvider.
package native
