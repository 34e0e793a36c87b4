package compositor

import "errors"

// Sentinel errors returned by the backend.
var (
	// ErrNilDevice is returned by New when no device is given.
	ErrNilDevice = errors.New("compositor: nil device")

	// ErrInvalidPrimitive is returned by Present when a primitive cannot
	// be drawn, such as a mesh with out-of-range indices or text in a font
	// that was never loaded. The frame is aborted.
	ErrInvalidPrimitive = errors.New("compositor: invalid primitive")

	// ErrInvalidFont is returned by LoadFont for data that is not a font.
	ErrInvalidFont = errors.New("compositor: invalid font")

	// ErrUnsupportedImage is returned when an image handle cannot be
	// decoded. It is wrapped together with ErrInvalidPrimitive by Present.
	ErrUnsupportedImage = errors.New("compositor: unsupported image")

	// ErrUnknownAntialiasing is returned when parsing an unknown
	// antialiasing mode.
	ErrUnknownAntialiasing = errors.New("compositor: unknown antialiasing mode")
)
