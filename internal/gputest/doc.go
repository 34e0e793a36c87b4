// Package gputest provides a recording implementation of gpucore for tests.
//
// Buffers and textures are host memory. Queue writes are applied at Submit,
// before the submitted encoder's copies run, mirroring the ordering of a
// real queue. Render passes are not rasterized; their descriptors, state
// changes and draw calls are recorded for inspection.
package gputest
