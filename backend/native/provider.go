package native

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// halProvider is implemented by gogpu devices that expose their HAL
// device and queue, such as *wgpu.Device.
type halProvider interface {
	HalDevice() hal.Device
	HalQueue() hal.Queue
}

// FromProvider wraps the device of a gogpu application. It returns the
// device together with the surface format to render into, which is
// TextureFormatUndefined for headless providers. The provider keeps
// ownership of the HAL device.
func FromProvider(p gpucontext.DeviceProvider) (*Device, gputypes.TextureFormat, error) {
	if p == nil {
		return nil, gputypes.TextureFormatUndefined, ErrNoHALDevice
	}
	hp, ok := p.Device().(halProvider)
	if !ok {
		return nil, gputypes.TextureFormatUndefined, fmt.Errorf("%w: %T", ErrNoHALDevice, p.Device())
	}
	raw, queue := hp.HalDevice(), hp.HalQueue()
	if raw == nil || queue == nil {
		return nil, gputypes.TextureFormatUndefined, fmt.Errorf("%w: device released", ErrNoHALDevice)
	}
	return NewDevice(raw, queue, gputypes.DefaultLimits()), p.SurfaceFormat(), nil
}

// IsSoftware reports whether the provider's adapter rasterizes on the CPU.
func IsSoftware(p gpucontext.DeviceProvider) bool {
	return p.AdapterInfo().Type == gpucontext.AdapterTypeSoftware
}
