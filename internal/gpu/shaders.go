package gpu

import _ "embed"

// Embedded WGSL shader sources.

//go:embed shaders/quad.wgsl
var quadShaderSource string

//go:embed shaders/text.wgsl
var textShaderSource string

//go:embed shaders/triangle.wgsl
var triangleShaderSource string

//go:embed shaders/blit.wgsl
var blitShaderSource string

//go:embed shaders/image.wgsl
var imageShaderSource string

// ShaderSources returns every embedded shader by name, for validation by
// device backends.
func ShaderSources() map[string]string {
	return map[string]string{
		"quad":     quadShaderSource,
		"text":     textShaderSource,
		"triangle": triangleShaderSource,
		"blit":     blitShaderSource,
		"image":    imageShaderSource,
	}
}
