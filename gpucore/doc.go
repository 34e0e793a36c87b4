// Package gpucore defines the narrow GPU interface the compositor renders
// through.
//
// Resources are referred to by opaque IDs ([BufferID], [TextureID] and so
// on). A [Device] creates and destroys them; implementations keep the
// mapping from IDs to backend objects. The interface covers exactly what the
// pipelines need: buffers, textures, samplers, WGSL shader modules, bind
// groups, render pipelines and render passes.
//
//	+---------------------+
//	|     compositor      |
//	|  (quad, text, ...)  |
//	+----------+----------+
//	           |
//	+----------v----------+
//	|   gpucore.Device    |
//	+----------+----------+
//	           |
//	+----------v----------+     +--------------------+
//	|   backend/native    |     |  internal/gputest  |
//	|   (gogpu/wgpu hal)  |     |  (recording fake)  |
//	+---------------------+     +--------------------+
//
// Enumerations and vertex layouts come from github.com/gogpu/gputypes so the
// same values flow unchanged to the hal layer.
//
// # Frame protocol
//
// Commands are recorded into a [CommandEncoder] owned by the caller. Uploads
// staged by the compositor are recorded as buffer-to-buffer copies into the
// same encoder, ahead of the render passes that consume them. The caller
// submits the encoder; the compositor never submits on its own.
package gpucore
