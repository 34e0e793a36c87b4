package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/gpucore"
)

// DefaultStagingChunkSize is the initial capacity of the staging belt.
const DefaultStagingChunkSize = 100 * 1024

// CopyAlignment is the alignment of buffer copy offsets and sizes.
const CopyAlignment = 4

// StagingBelt uploads per-frame data through a host-side arena.
//
// During preparation, WriteBuffer carves regions from the current arena and
// records a copy from the arena's GPU buffer into the destination. Finish
// uploads every arena written this frame with one queue write each.
// Recall makes the arenas reusable.
//
// The caller must call Finish after the last WriteBuffer and before
// submitting the encoder, and Recall only after the GPU has finished the
// submission. Neither ordering is checked: recalling early lets the next
// frame overwrite data the GPU has not copied yet.
type StagingBelt struct {
	dev        gpucore.Device
	chunkSize  uint64
	current    *arena
	retired    []*arena
	generation uint64
}

// arena is a host mirror of one GPU staging buffer.
type arena struct {
	buffer   gpucore.BufferID
	host     []byte
	used     uint64
	uploaded uint64
}

// BeltStats describes the state of a staging belt.
type BeltStats struct {
	// Capacity is the size of the current arena in bytes.
	Capacity uint64

	// Used is the number of bytes carved from the current arena.
	Used uint64

	// Generation counts completed recalls.
	Generation uint64

	// Arenas is the number of live arenas, current one included.
	Arenas int
}

// NewStagingBelt creates a belt whose first arena holds chunkSize bytes.
func NewStagingBelt(dev gpucore.Device, chunkSize uint64) (*StagingBelt, error) {
	if chunkSize == 0 {
		chunkSize = DefaultStagingChunkSize
	}
	b := &StagingBelt{dev: dev, chunkSize: alignUp(chunkSize, CopyAlignment)}
	a, err := b.newArena(b.chunkSize)
	if err != nil {
		return nil, err
	}
	b.current = a
	return b, nil
}

func (b *StagingBelt) newArena(size uint64) (*arena, error) {
	id, err := b.dev.CreateBuffer(&gpucore.BufferDescriptor{
		Label: "staging_belt",
		Size:  size,
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create staging arena (%d bytes): %w", size, err)
	}
	return &arena{buffer: id, host: make([]byte, size)}, nil
}

// WriteBuffer reserves size bytes, records a copy of them into target at
// offset, and returns the reserved bytes for the caller to fill before
// Finish. size must be a multiple of CopyAlignment.
func (b *StagingBelt) WriteBuffer(enc gpucore.CommandEncoder, target gpucore.BufferID, offset, size uint64) ([]byte, error) {
	if size%CopyAlignment != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrUnalignedWrite, size)
	}
	if size == 0 {
		return nil, nil
	}

	start := alignUp(b.current.used, CopyAlignment)
	if start+size > uint64(len(b.current.host)) {
		if err := b.grow(size); err != nil {
			return nil, err
		}
		start = 0
	}

	a := b.current
	a.used = start + size
	enc.CopyBufferToBuffer(a.buffer, start, target, offset, size)
	return a.host[start : start+size : start+size], nil
}

// Write stages data into target at offset.
func (b *StagingBelt) Write(enc gpucore.CommandEncoder, target gpucore.BufferID, offset uint64, data []byte) error {
	dst, err := b.WriteBuffer(enc, target, offset, uint64(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// grow retires the current arena and replaces it with one that holds at
// least request bytes. Retired arenas stay alive until Recall, since copies
// already recorded read from them.
func (b *StagingBelt) grow(request uint64) error {
	size := max(2*uint64(len(b.current.host)), alignUp(request, CopyAlignment))
	a, err := b.newArena(size)
	if err != nil {
		return err
	}
	slogger().Debug("staging belt grown",
		"from", len(b.current.host), "to", size, "generation", b.generation)
	b.retired = append(b.retired, b.current)
	b.current = a
	return nil
}

// Finish uploads the bytes written since the last Finish.
func (b *StagingBelt) Finish() {
	for _, a := range b.retired {
		b.upload(a)
	}
	b.upload(b.current)
}

func (b *StagingBelt) upload(a *arena) {
	if a.used <= a.uploaded {
		return
	}
	b.dev.WriteBuffer(a.buffer, a.uploaded, a.host[a.uploaded:a.used])
	a.uploaded = a.used
}

// Recall releases retired arenas and makes the current arena reusable.
func (b *StagingBelt) Recall() {
	for _, a := range b.retired {
		b.dev.DestroyBuffer(a.buffer)
	}
	clear(b.retired)
	b.retired = b.retired[:0]
	b.current.used = 0
	b.current.uploaded = 0
	b.generation++
}

// Stats returns the current belt state.
func (b *StagingBelt) Stats() BeltStats {
	return BeltStats{
		Capacity:   uint64(len(b.current.host)),
		Used:       b.current.used,
		Generation: b.generation,
		Arenas:     1 + len(b.retired),
	}
}

// Destroy releases every arena.
func (b *StagingBelt) Destroy() {
	b.Recall()
	if b.current != nil {
		b.dev.DestroyBuffer(b.current.buffer)
		b.current = nil
	}
}
