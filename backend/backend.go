package backend

import (
	"errors"
	"fmt"

	"github.com/gogpu/compositor/backend/native"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend names, in order of preference.
const (
	NameVulkan = "vulkan"
	NameMetal  = "metal"
	NameDX12   = "dx12"
	NameGLES   = "gles"
	NameNoop   = "noop"
)

// Open opens the named backend's first adapter.
func Open(name string) (*native.Session, error) {
	api := registry.Get(name)
	if api == nil {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	s, err := native.Open(api)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: %w", name, err)
	}
	return s, nil
}
