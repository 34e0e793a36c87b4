// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package primitive

import "sync/atomic"

// HandleKind tells where the data of an image handle lives.
type HandleKind uint8

// Handle kinds.
const (
	// HandlePixels holds raw RGBA pixels.
	HandlePixels HandleKind = iota

	// HandleMemory holds encoded image bytes.
	HandleMemory

	// HandlePath names an encoded image file.
	HandlePath
)

var nextHandleID atomic.Uint64

// Handle identifies image data. Textures are cached per handle, so reuse
// the same handle for the same image across frames.
type Handle struct {
	id     uint64
	kind   HandleKind
	path   string
	data   []byte
	width  uint32
	height uint32
	vector bool
}

func newHandle(kind HandleKind) *Handle {
	return &Handle{id: nextHandleID.Add(1), kind: kind}
}

// NewHandleFromPixels returns a handle for straight-alpha RGBA pixels. data
// must hold width*height*4 bytes and must not be modified afterwards.
func NewHandleFromPixels(width, height uint32, data []byte) *Handle {
	h := newHandle(HandlePixels)
	h.width = width
	h.height = height
	h.data = data
	return h
}

// NewHandleFromMemory returns a handle for encoded image bytes.
func NewHandleFromMemory(data []byte) *Handle {
	h := newHandle(HandleMemory)
	h.data = data
	return h
}

// NewHandleFromPath returns a handle for an image file.
func NewHandleFromPath(path string) *Handle {
	h := newHandle(HandlePath)
	h.path = path
	return h
}

// NewSvgHandleFromMemory returns a handle for the bytes of an SVG
// document.
func NewSvgHandleFromMemory(data []byte) *Handle {
	h := NewHandleFromMemory(data)
	h.vector = true
	return h
}

// NewSvgHandleFromPath returns a handle for an SVG file.
func NewSvgHandleFromPath(path string) *Handle {
	h := NewHandleFromPath(path)
	h.vector = true
	return h
}

// IsVector reports whether the handle holds an SVG document. Vector
// handles are rasterized at the size they are drawn at.
func (h *Handle) IsVector() bool { return h.vector }

// ID returns the unique id of the handle.
func (h *Handle) ID() uint64 { return h.id }

// Kind returns where the data lives.
func (h *Handle) Kind() HandleKind { return h.kind }

// Path returns the file path of a HandlePath handle.
func (h *Handle) Path() string { return h.path }

// Bytes returns the raw pixels or encoded bytes.
func (h *Handle) Bytes() []byte { return h.data }

// PixelSize returns the dimensions of a HandlePixels handle.
func (h *Handle) PixelSize() (width, height uint32) { return h.width, h.height }
