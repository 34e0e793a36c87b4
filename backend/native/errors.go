package native

import "errors"

// Errors returned by the native device.
var (
	// ErrUnknownResource is returned when an ID does not name a live
	// resource of the expected kind.
	ErrUnknownResource = errors.New("native: unknown resource")

	// ErrEncoderSubmitted is returned when an encoder is used after it was
	// submitted.
	ErrEncoderSubmitted = errors.New("native: encoder already submitted")

	// ErrShaderCompile is returned when WGSL fails to compile.
	ErrShaderCompile = errors.New("native: shader compilation failed")

	// ErrNoHALDevice is returned by FromProvider when the provider does not
	// expose a HAL device.
	ErrNoHALDevice = errors.New("native: provider has no HAL device")
)
