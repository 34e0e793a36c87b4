package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoAdapter is returned by Open when the backend exposes no adapter.
var ErrNoAdapter = errors.New("native: no adapter available")

// Session is a device opened by this package together with the instance
// and adapter it came from.
type Session struct {
	*Device

	// Info describes the adapter the device was opened on.
	Info gputypes.AdapterInfo

	instance hal.Instance
	adapter  hal.Adapter
}

// Open creates an instance of api, opens its first adapter and wraps the
// resulting device.
func Open(api hal.Backend) (*Session, error) {
	inst, err := api.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	adapters := inst.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		inst.Destroy()
		return nil, ErrNoAdapter
	}
	exposed := adapters[0]
	limits := exposed.Capabilities.Limits

	open, err := exposed.Adapter.Open(0, limits)
	if err != nil {
		inst.Destroy()
		return nil, fmt.Errorf("native: open %s: %w", exposed.Info.Name, err)
	}

	dev := NewDevice(open.Device, open.Queue, limits)
	dev.owned = true
	return &Session{Device: dev, Info: exposed.Info, instance: inst, adapter: exposed.Adapter}, nil
}

// Close releases the device, the adapter and the instance.
func (s *Session) Close() {
	s.Release()
	s.adapter.Destroy()
	s.instance.Destroy()
}
