package backend

import (
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// registry holds registered backends. Priority order for selection:
// hardware APIs first, noop as the fallback.
var registry = gpucontext.NewRegistry[hal.Backend](
	gpucontext.WithPriority(NameVulkan, NameMetal, NameDX12, NameGLES, NameNoop),
)

// Register registers a HAL backend under name, replacing any backend of
// the same name.
func Register(name string, api hal.Backend) {
	registry.Register(name, func() hal.Backend { return api })
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registry.Unregister(name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	names := registry.Available()
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// Default returns the name of the preferred registered backend, or "" if
// none is registered.
func Default() string {
	return registry.BestName()
}
