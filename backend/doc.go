// Package backend selects the GPU backend the compositor runs on.
//
// HAL backends are registered by name and opened through the native
// device adapter. The noop backend is registered on import and is used by
// headless tools and tests:
//
//	import "github.com/gogpu/compositor/backend"
//
//	s, err := backend.Open(backend.Default())
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	b, err := compositor.New(s.Device, gputypes.TextureFormatRGBA8Unorm)
//
// Other backends are added with Register, typically from the package that
// links them:
//
//	backend.Register(backend.NameVulkan, vulkan.API{})
package backend
