package gpu

import "errors"

// Sentinel errors for the gpu package.
var (
	// ErrUnalignedWrite is returned when a staged write is not a multiple of
	// CopyAlignment bytes.
	ErrUnalignedWrite = errors.New("gpu: staged write size is not 4-byte aligned")

	// ErrUnsupportedImage is returned when an image handle cannot be decoded.
	ErrUnsupportedImage = errors.New("gpu: unsupported image")

	// ErrLayerNotPrepared is returned when a pipeline renders a layer index
	// it has not prepared this frame.
	ErrLayerNotPrepared = errors.New("gpu: layer not prepared")

	// ErrAtlasFull is returned when a glyph does not fit the text atlas at
	// its largest size.
	ErrAtlasFull = errors.New("gpu: text atlas full")
)

// ErrUnknownFont is returned when text names a family that was never loaded.
var ErrUnknownFont = errors.New("gpu: unknown font family")
