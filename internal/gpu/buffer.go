package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/gpucore"
)

// Buffer is a GPU buffer that grows on demand. Growing replaces the
// underlying buffer; contents are not preserved.
type Buffer struct {
	dev   gpucore.Device
	label string
	usage gputypes.BufferUsage
	id    gpucore.BufferID
	size  uint64
}

// NewBuffer creates a buffer of at least size bytes.
func NewBuffer(dev gpucore.Device, label string, size uint64, usage gputypes.BufferUsage) (*Buffer, error) {
	b := &Buffer{dev: dev, label: label, usage: usage}
	if err := b.allocate(max(size, CopyAlignment)); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buffer) allocate(size uint64) error {
	id, err := b.dev.CreateBuffer(&gpucore.BufferDescriptor{
		Label: b.label,
		Size:  alignUp(size, CopyAlignment),
		Usage: b.usage,
	})
	if err != nil {
		return fmt.Errorf("gpu: create %s buffer (%d bytes): %w", b.label, size, err)
	}
	b.id = id
	b.size = alignUp(size, CopyAlignment)
	return nil
}

// Ensure grows the buffer so it holds at least size bytes. The new size is
// at least double the old one. It reports whether the buffer was replaced,
// which invalidates bind groups referring to it.
func (b *Buffer) Ensure(size uint64) (bool, error) {
	if size <= b.size {
		return false, nil
	}
	newSize := max(size, 2*b.size)
	old := b.id
	if err := b.allocate(newSize); err != nil {
		return false, err
	}
	b.dev.DestroyBuffer(old)
	slogger().Debug("buffer grown", "label", b.label, "size", b.size)
	return true, nil
}

// ID returns the current GPU buffer.
func (b *Buffer) ID() gpucore.BufferID { return b.id }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Destroy releases the GPU buffer.
func (b *Buffer) Destroy() {
	if b.id != gpucore.InvalidID {
		b.dev.DestroyBuffer(b.id)
		b.id = gpucore.InvalidID
		b.size = 0
	}
}

func alignUp(v, a uint64) uint64 {
	return (v + a - 1) / a * a
}
